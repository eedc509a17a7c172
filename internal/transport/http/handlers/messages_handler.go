package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/praytyushpande/crewlyx/internal/services/auth"
	messagessvc "github.com/praytyushpande/crewlyx/internal/services/messages"
	"github.com/praytyushpande/crewlyx/internal/transport/http/dto"
	httperrors "github.com/praytyushpande/crewlyx/internal/transport/http/errors"
)

type MessagesHandler struct {
	service *messagessvc.Service
}

func NewMessagesHandler(service *messagessvc.Service) *MessagesHandler {
	return &MessagesHandler{service: service}
}

func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	matchID, ok := urlParamInt64(r, "matchId")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	offset := queryInt(r, "offset", "0")
	limit := queryInt(r, "limit", "50")

	page, err := h.service.List(r.Context(), matchID, identity.UserID, offset, limit)
	if err != nil {
		handleMessagesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MessageListResponse{
		Messages: page.Items,
		Total:    page.Total,
		Offset:   offset,
		Limit:    limit,
	})
}

func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	matchID, ok := urlParamInt64(r, "matchId")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	message, err := h.service.Send(r.Context(), matchID, identity.UserID, req.Content)
	if err != nil {
		handleMessagesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.MessageResponse{Message: message})
}

func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	matchID, ok := urlParamInt64(r, "matchId")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	marked, err := h.service.MarkAllRead(r.Context(), matchID, identity.UserID)
	if err != nil {
		handleMessagesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkReadResponse{Marked: marked})
}

func (h *MessagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	messageID, ok := urlParamInt64(r, "messageId")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message id")
		return
	}

	if err := h.service.Delete(r.Context(), messageID, identity.UserID); err != nil {
		handleMessagesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DeleteMessageResponse{OK: true})
}

func (h *MessagesHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MESSAGES_SERVICE_UNAVAILABLE", "messages service is unavailable")
		return
	}

	count, err := h.service.UnreadCount(r.Context(), identity.UserID)
	if err != nil {
		handleMessagesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnreadCountResponse{Count: count})
}

func handleMessagesError(w http.ResponseWriter, err error) {
	var limited *messagessvc.RateLimitedError

	switch {
	case errors.As(err, &limited):
		writeRateLimited(w, "too many messages, slow down", limited.RetryAfterSec)
	case errors.Is(err, messagessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, messagessvc.ErrMatchGone):
		writeNotFound(w, "NOT_FOUND", "match not found")
	case errors.Is(err, messagessvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "message not found")
	case errors.Is(err, messagessvc.ErrAccessDenied):
		writeForbidden(w, "ACCESS_DENIED", "access denied")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
