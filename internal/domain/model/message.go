package model

import "time"

const MaxMessageLength = 1000

type Message struct {
	ID        int64      `json:"id"`
	MatchID   int64      `json:"matchId"`
	SenderID  int64      `json:"senderId"`
	Content   string     `json:"content"`
	IsRead    bool       `json:"isRead"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	IsEdited  bool       `json:"isEdited"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
