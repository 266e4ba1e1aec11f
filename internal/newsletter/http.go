// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package newsletter

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wayneaws/studenthub/internal/platform/constants"
	requestutil "github.com/wayneaws/studenthub/internal/platform/request"
	"github.com/wayneaws/studenthub/internal/platform/respond"
)

// Handler implements the HTTP layer for the newsletter.
type Handler struct {
	newsletterService *Service
	adminToken        []byte
	limit             func(http.Handler) http.Handler
}

// NewHandler constructs a newsletter [Handler].
//
// adminToken guards the subscriber list; when empty the list is never served.
// limit, when non-nil, wraps every route.
func NewHandler(service *Service, adminToken string, limit func(http.Handler) http.Handler) *Handler {
	return &Handler{newsletterService: service, adminToken: []byte(adminToken), limit: limit}
}

// Routes returns the router mounted at /newsletter.
//
// # Endpoints
//   - POST /subscribe, /unsubscribe
//   - GET  /subscriptions (X-Admin-Token)
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	if handler.limit != nil {
		router.Use(handler.limit)
	}

	router.Post("/subscribe", handler.subscribe)
	router.Post("/unsubscribe", handler.unsubscribe)
	router.With(handler.requireAdminToken).Get("/subscriptions", handler.subscriptions)
	return router
}

type emailRequest struct {
	Email string `json:"email"`
}

type subscriptionList struct {
	Subscriptions []Subscriber `json:"subscriptions"`
	Count         int          `json:"count"`
}

/*
POST /newsletter/subscribe.

Response:
  - 201: new subscription
  - 200: reactivated subscription
  - 400: VALIDATION_ERROR
  - 409: ALREADY_SUBSCRIBED
*/
func (handler *Handler) subscribe(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	outcome, err := handler.newsletterService.Subscribe(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if outcome == OutcomeReactivated {
		respond.Message(writer, http.StatusOK, MessageReactivated)
		return
	}
	respond.Message(writer, http.StatusCreated, MessageSubscribed)
}

func (handler *Handler) unsubscribe(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.newsletterService.Unsubscribe(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, MessageUnsubscribed)
}

func (handler *Handler) subscriptions(writer http.ResponseWriter, request *http.Request) {
	subscribers, err := handler.newsletterService.ActiveSubscribers(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, subscriptionList{Subscriptions: subscribers, Count: len(subscribers)})
}

// requireAdminToken compares the X-Admin-Token header in constant time.
func (handler *Handler) requireAdminToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		provided := []byte(request.Header.Get(constants.HeaderAdminToken))

		if len(handler.adminToken) == 0 || subtle.ConstantTimeCompare(provided, handler.adminToken) != 1 {
			respond.Error(writer, request, ErrAdminToken)
			return
		}
		next.ServeHTTP(writer, request)
	})
}
