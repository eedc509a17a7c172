package dto

import "github.com/praytyushpande/crewlyx/internal/domain/model"

type UpdateProfileRequest struct {
	Name         *string  `json:"name,omitempty"`
	Age          *int     `json:"age,omitempty"`
	Bio          *string  `json:"bio,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Experience   *string  `json:"experience,omitempty"`
	Skills       []string `json:"skills,omitempty"`
	Interests    []string `json:"interests,omitempty"`
	LookingFor   *string  `json:"lookingFor,omitempty"`
	Availability *string  `json:"availability,omitempty"`
}

type DiscoverResponse struct {
	Users []model.PublicProfile `json:"users"`
}

type ProfilePhotoResponse struct {
	ProfilePhoto string `json:"profilePhoto"`
}

type DeactivateResponse struct {
	OK bool `json:"ok"`
}
