package dto

import (
	"github.com/praytyushpande/crewlyx/internal/domain/model"
	messagessvc "github.com/praytyushpande/crewlyx/internal/services/messages"
)

type SendMessageRequest struct {
	Content string `json:"content"`
}

type MessageResponse struct {
	Message model.Message `json:"message"`
}

type MessageListResponse struct {
	Messages []messagessvc.MessageItem `json:"messages"`
	Total    int                       `json:"total"`
	Offset   int                       `json:"offset"`
	Limit    int                       `json:"limit"`
}

type MarkReadResponse struct {
	Marked int64 `json:"marked"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

type DeleteMessageResponse struct {
	OK bool `json:"ok"`
}
