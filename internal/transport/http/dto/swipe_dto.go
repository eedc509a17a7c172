package dto

import (
	"time"

	"github.com/praytyushpande/crewlyx/internal/domain/model"
)

type SwipeRequest struct {
	TargetUserID int64  `json:"targetUserId"`
	Action       string `json:"action"`
}

type SwipeResponse struct {
	Action       string       `json:"action"`
	TargetUserID int64        `json:"targetUserId"`
	IsMatch      bool         `json:"isMatch"`
	Match        *model.Match `json:"match,omitempty"`
}

type SwipeHistoryEntry struct {
	TargetUserID       int64     `json:"targetUserId"`
	TargetName         string    `json:"targetName"`
	TargetProfilePhoto string    `json:"targetProfilePhoto"`
	TargetBio          string    `json:"targetBio"`
	Action             string    `json:"action"`
	CreatedAt          time.Time `json:"createdAt"`
}

type SwipeHistoryResponse struct {
	Swipes []SwipeHistoryEntry `json:"swipes"`
	Total  int                 `json:"total"`
	Offset int                 `json:"offset"`
	Limit  int                 `json:"limit"`
}

type SwipeStatsResponse struct {
	TotalSwipes int     `json:"totalSwipes"`
	Likes       int     `json:"likes"`
	Passes      int     `json:"passes"`
	Matches     int     `json:"matches"`
	LikeRatio   float64 `json:"likeRatio"`
}
