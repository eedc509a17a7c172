package handlers

import (
	"errors"
	"net/http"
	"strings"

	authsvc "github.com/praytyushpande/crewlyx/internal/services/auth"
	swipesvc "github.com/praytyushpande/crewlyx/internal/services/swipes"
	"github.com/praytyushpande/crewlyx/internal/transport/http/dto"
	httperrors "github.com/praytyushpande/crewlyx/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.TargetUserID <= 0 || strings.TrimSpace(req.Action) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "targetUserId and action are required")
		return
	}

	result, err := h.service.Swipe(r.Context(), identity.UserID, req.TargetUserID, req.Action)
	if err != nil {
		handleSwipeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.SwipeResponse{
		Action:       string(result.Swipe.Action),
		TargetUserID: result.Swipe.TargetUserID,
		IsMatch:      result.IsMatch,
		Match:        result.Match,
	})
}

func (h *SwipeHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	offset := queryInt(r, "offset", "0")
	limit := queryInt(r, "limit", "20")
	action := r.URL.Query().Get("action")

	page, err := h.service.History(r.Context(), identity.UserID, action, offset, limit)
	if err != nil {
		handleSwipeError(w, err)
		return
	}

	entries := make([]dto.SwipeHistoryEntry, 0, len(page.Items))
	for _, item := range page.Items {
		entries = append(entries, dto.SwipeHistoryEntry{
			TargetUserID:       item.Swipe.TargetUserID,
			TargetName:         item.TargetName,
			TargetProfilePhoto: item.TargetProfilePhoto,
			TargetBio:          item.TargetBio,
			Action:             string(item.Swipe.Action),
			CreatedAt:          item.Swipe.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeHistoryResponse{
		Swipes: entries,
		Total:  page.Total,
		Offset: offset,
		Limit:  limit,
	})
}

func (h *SwipeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	stats, err := h.service.Stats(r.Context(), identity.UserID)
	if err != nil {
		handleSwipeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeStatsResponse{
		TotalSwipes: stats.TotalSwipes,
		Likes:       stats.Likes,
		Passes:      stats.Passes,
		Matches:     stats.Matches,
		LikeRatio:   stats.LikeRatio,
	})
}

func handleSwipeError(w http.ResponseWriter, err error) {
	var limited *swipesvc.RateLimitedError

	switch {
	case errors.As(err, &limited):
		writeRateLimited(w, "too many swipes, slow down", limited.RetryAfterSec)
	case errors.Is(err, swipesvc.ErrSelfSwipe):
		writeBadRequest(w, "INVALID_OPERATION", "cannot swipe on yourself")
	case errors.Is(err, swipesvc.ErrUnsupportedAction):
		writeBadRequest(w, "VALIDATION_ERROR", "action must be like or pass")
	case errors.Is(err, swipesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
	case errors.Is(err, swipesvc.ErrUserNotFound):
		writeNotFound(w, "NOT_FOUND", "target user not found")
	case errors.Is(err, swipesvc.ErrDuplicateSwipe):
		writeBadRequest(w, "DUPLICATE_SWIPE", "already swiped on this user")
	case errors.Is(err, swipesvc.ErrDuplicateMatch):
		writeBadRequest(w, "DUPLICATE_MATCH", "match already exists")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
