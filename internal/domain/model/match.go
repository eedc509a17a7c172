package model

import "time"

// Match is the durable record created upon mutual like. The user pair is
// stored normalized with UserAID < UserBID so the storage-level unique
// constraint covers the unordered pair.
type Match struct {
	ID           int64               `json:"id"`
	UserAID      int64               `json:"userAId"`
	UserBID      int64               `json:"userBId"`
	LastMessage  *LastMessageSummary `json:"lastMessage,omitempty"`
	MessageCount int                 `json:"messageCount"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// LastMessageSummary is derived state duplicated from the messages table as a
// read optimization for match lists. The messages table remains the source of
// truth.
type LastMessageSummary struct {
	Content  string    `json:"content"`
	SenderID int64     `json:"senderId"`
	SentAt   time.Time `json:"sentAt"`
}

func (m Match) HasParticipant(userID int64) bool {
	return m.UserAID == userID || m.UserBID == userID
}

func (m Match) OtherUserID(userID int64) int64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}
