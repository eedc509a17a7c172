package enums

type LookingFor string

const (
	LookingForCoFounder    LookingFor = "co-founder"
	LookingForHackathon    LookingFor = "hackathon-partner"
	LookingForCollaborator LookingFor = "project-collaborator"
	LookingForMentor       LookingFor = "mentor"
	LookingForAny          LookingFor = "any"
)

func IsValidLookingFor(value string) bool {
	switch LookingFor(value) {
	case LookingForCoFounder, LookingForHackathon, LookingForCollaborator, LookingForMentor, LookingForAny:
		return true
	default:
		return false
	}
}
