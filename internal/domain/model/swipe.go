package model

import (
	"time"

	"github.com/praytyushpande/crewlyx/internal/domain/enums"
)

// Swipe is a one-time like/pass decision by one user about another.
// A (actor, target) pair records at most one decision, ever.
type Swipe struct {
	ID           int64             `json:"id"`
	ActorUserID  int64             `json:"actorUserId"`
	TargetUserID int64             `json:"targetUserId"`
	Action       enums.SwipeAction `json:"action"`
	CreatedAt    time.Time         `json:"createdAt"`
}
