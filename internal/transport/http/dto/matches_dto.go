package dto

import (
	"github.com/praytyushpande/crewlyx/internal/domain/model"
	matchessvc "github.com/praytyushpande/crewlyx/internal/services/matches"
)

type MatchListResponse struct {
	Matches []matchessvc.MatchItem `json:"matches"`
	Total   int                    `json:"total"`
	Offset  int                    `json:"offset"`
	Limit   int                    `json:"limit"`
}

type MatchResponse struct {
	Match model.Match `json:"match"`
}

type UnmatchResponse struct {
	OK bool `json:"ok"`
}
