package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/praytyushpande/crewlyx/internal/services/auth"
	matchessvc "github.com/praytyushpande/crewlyx/internal/services/matches"
	"github.com/praytyushpande/crewlyx/internal/transport/http/dto"
	httperrors "github.com/praytyushpande/crewlyx/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	offset := queryInt(r, "offset", "0")
	limit := queryInt(r, "limit", "20")

	page, err := h.service.List(r.Context(), identity.UserID, offset, limit)
	if err != nil {
		handleMatchesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MatchListResponse{
		Matches: page.Items,
		Total:   page.Total,
		Offset:  offset,
		Limit:   limit,
	})
}

func (h *MatchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	matchID, ok := urlParamInt64(r, "matchId")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	match, err := h.service.Get(r.Context(), matchID, identity.UserID)
	if err != nil {
		handleMatchesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MatchResponse{Match: match})
}

func (h *MatchesHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	matchID, ok := urlParamInt64(r, "matchId")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	if err := h.service.Unmatch(r.Context(), matchID, identity.UserID); err != nil {
		handleMatchesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnmatchResponse{OK: true})
}

func handleMatchesError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matchessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
	case errors.Is(err, matchessvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "match not found")
	case errors.Is(err, matchessvc.ErrAccessDenied):
		writeForbidden(w, "ACCESS_DENIED", "not a participant of this match")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
