package handlers

import (
	"errors"
	"net/http"
	"strings"

	authsvc "github.com/praytyushpande/crewlyx/internal/services/auth"
	userssvc "github.com/praytyushpande/crewlyx/internal/services/users"
	"github.com/praytyushpande/crewlyx/internal/transport/http/dto"
	httperrors "github.com/praytyushpande/crewlyx/internal/transport/http/errors"
)

type UsersHandler struct {
	service *userssvc.Service
}

func NewUsersHandler(service *userssvc.Service) *UsersHandler {
	return &UsersHandler{service: service}
}

func (h *UsersHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	user, err := h.service.Profile(r.Context(), identity.UserID)
	if err != nil {
		handleUsersError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, user)
}

func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), identity.UserID, userssvc.UpdateInput{
		Name:         req.Name,
		Age:          req.Age,
		Bio:          req.Bio,
		Location:     req.Location,
		Experience:   req.Experience,
		Skills:       req.Skills,
		Interests:    req.Interests,
		LookingFor:   req.LookingFor,
		Availability: req.Availability,
	})
	if err != nil {
		handleUsersError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, user)
}

func (h *UsersHandler) Discover(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	query := r.URL.Query()
	in := userssvc.DiscoverInput{
		LookingFor: strings.TrimSpace(query.Get("lookingFor")),
		Location:   strings.TrimSpace(query.Get("location")),
		Limit:      queryInt(r, "limit", "20"),
	}
	if raw := strings.TrimSpace(query.Get("skills")); raw != "" {
		in.Skills = strings.Split(raw, ",")
	}

	profiles, err := h.service.Discover(r.Context(), identity.UserID, in)
	if err != nil {
		handleUsersError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DiscoverResponse{Users: profiles})
}

func (h *UsersHandler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	targetID, ok := urlParamInt64(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	profile, err := h.service.PublicProfile(r.Context(), identity.UserID, targetID)
	if err != nil {
		handleUsersError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profile)
}

func (h *UsersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	if err := h.service.Deactivate(r.Context(), identity.UserID); err != nil {
		handleUsersError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DeactivateResponse{OK: true})
}

func handleUsersError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, userssvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "user not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
