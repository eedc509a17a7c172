package dto

import "github.com/praytyushpande/crewlyx/internal/domain/model"

type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Age        int    `json:"age"`
	LookingFor string `json:"lookingFor,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type AuthTokensResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresInSec int64       `json:"expiresInSec"`
	User         *model.User `json:"user,omitempty"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
