// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package discord

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wayneaws/studenthub/internal/platform/respond"
)

// Handler exposes the invite proxy.
type Handler struct {
	client *Client
}

// NewHandler constructs a discord [Handler].
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// Routes returns the router mounted at /discord.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/discord-invite", handler.invite)
	return router
}

type inviteResponse struct {
	InviteURL string `json:"inviteUrl"`
}

/*
GET /discord/discord-invite.

Response:
  - 200: {inviteUrl}
  - 500: DISCORD_NOT_CONFIGURED
  - 502: BAD_GATEWAY
*/
func (handler *Handler) invite(writer http.ResponseWriter, request *http.Request) {
	invite, err := handler.client.CreateInvite(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, inviteResponse{InviteURL: invite.URL})
}
