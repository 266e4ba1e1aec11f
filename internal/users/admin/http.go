// Copyright (c) 2026 StudentHub. All rights reserved.
// Author: StudentHub maintainers

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wayneaws/studenthub/internal/platform/middleware"
	requestutil "github.com/wayneaws/studenthub/internal/platform/request"
	"github.com/wayneaws/studenthub/internal/platform/respond"
	"github.com/wayneaws/studenthub/internal/platform/sec"
	"github.com/wayneaws/studenthub/internal/users/auth"
	"github.com/wayneaws/studenthub/pkg/pagination"
)

// Handler implements the HTTP layer for the admin console.
type Handler struct {
	adminService *Service
}

// NewHandler constructs a new admin [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{adminService: service}
}

// Routes returns the router mounted at /admin.
//
// # Endpoints
//   - GET    /dashboard/stats, /users, /users/{id}      (moderator+)
//   - PUT    /users/{id}/ban, /users/{id}/unban          (moderator+)
//   - PUT    /users/{id}/role                            (admin+)
//   - DELETE /users/{id}                                 (admin+)
//   - POST   /users/{id}/revoke-sessions                 (admin+)
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleModerator))

	router.Get("/dashboard/stats", handler.stats)
	router.Get("/users", handler.listMembers)
	router.Get("/users/{id}", handler.memberDetails)
	router.Put("/users/{id}/ban", handler.ban)
	router.Put("/users/{id}/unban", handler.unban)

	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleAdmin))

		adminRoute.Put("/users/{id}/role", handler.changeRole)
		adminRoute.Delete("/users/{id}", handler.deleteMember)
		adminRoute.Post("/users/{id}/revoke-sessions", handler.revokeSessions)
	})

	return router
}

type memberResponse struct {
	Message string        `json:"message,omitempty"`
	User    *auth.Account `json:"user"`
}

// # Read Endpoints

func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.adminService.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

// listMembers serves GET /admin/users?page&limit&search&role&status
func (handler *Handler) listMembers(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	query := request.URL.Query()

	filter := Filter{
		Search: query.Get("search"),
		Role:   sec.UserRole(query.Get(FieldRole)),
		Status: auth.Status(query.Get(FieldStatus)),
	}

	members, total, err := handler.adminService.ListMembers(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, members, paginationParams.Meta(total))
}

func (handler *Handler) memberDetails(writer http.ResponseWriter, request *http.Request) {
	member, err := handler.adminService.MemberDetails(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, memberResponse{User: member})
}

// # Moderation Endpoints

type roleRequest struct {
	Role sec.UserRole `json:"role"`
}

type banRequest struct {
	Reason string `json:"reason"`
}

/*
PUT /admin/users/{id}/role.

Response:
  - 200: {message, user}
  - 400: VALIDATION_ERROR (unknown role)
  - 403: FORBIDDEN (caller does not outrank target, or grants admin without being superuser)
  - 404: NOT_FOUND
*/
func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input roleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.adminService.ChangeRole(request.Context(), callerID, requestutil.Param(request, "id"), input.Role)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, memberResponse{Message: "User role updated to " + string(member.Role), User: member})
}

// ban serves PUT /admin/users/{id}/ban. The body is optional.
func (handler *Handler) ban(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input banRequest
	if request.ContentLength != 0 {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	member, err := handler.adminService.Ban(request.Context(), callerID, requestutil.Param(request, "id"), input.Reason)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, memberResponse{Message: MessageBanned, User: member})
}

func (handler *Handler) unban(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.adminService.Unban(request.Context(), callerID, requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, memberResponse{Message: MessageUnbanned, User: member})
}

func (handler *Handler) deleteMember(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.adminService.Delete(request.Context(), callerID, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, MessageDeleted)
}

func (handler *Handler) revokeSessions(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.adminService.RevokeSessions(request.Context(), callerID, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, http.StatusOK, MessageSessionsRevoked)
}
