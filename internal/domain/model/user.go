package model

import (
	"time"

	"github.com/praytyushpande/crewlyx/internal/domain/enums"
)

type User struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Age          int                `json:"age"`
	Bio          string             `json:"bio"`
	Location     string             `json:"location"`
	Experience   string             `json:"experience"`
	Skills       []string           `json:"skills"`
	Interests    []string           `json:"interests"`
	LookingFor   enums.LookingFor   `json:"lookingFor"`
	Availability enums.Availability `json:"availability"`
	ProfilePhoto string             `json:"profilePhoto"`
	IsActive     bool               `json:"isActive"`
	LastActive   time.Time          `json:"lastActive"`
	ProfileViews int                `json:"profileViews"`
	TotalLikes   int                `json:"totalLikes"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// PublicProfile is the view of a user exposed to other users. It never
// carries the email, password hash, or swipe history.
type PublicProfile struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Age          int                `json:"age"`
	Bio          string             `json:"bio"`
	Location     string             `json:"location"`
	Experience   string             `json:"experience"`
	Skills       []string           `json:"skills"`
	Interests    []string           `json:"interests"`
	LookingFor   enums.LookingFor   `json:"lookingFor"`
	Availability enums.Availability `json:"availability"`
	ProfilePhoto string             `json:"profilePhoto"`
	LastActive   time.Time          `json:"lastActive"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{
		ID:           u.ID,
		Name:         u.Name,
		Age:          u.Age,
		Bio:          u.Bio,
		Location:     u.Location,
		Experience:   u.Experience,
		Skills:       u.Skills,
		Interests:    u.Interests,
		LookingFor:   u.LookingFor,
		Availability: u.Availability,
		ProfilePhoto: u.ProfilePhoto,
		LastActive:   u.LastActive,
	}
}
