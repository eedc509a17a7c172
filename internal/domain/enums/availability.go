package enums

type Availability string

const (
	AvailabilityFullTime Availability = "full-time"
	AvailabilityPartTime Availability = "part-time"
	AvailabilityWeekends Availability = "weekends"
	AvailabilityFlexible Availability = "flexible"
)

func IsValidAvailability(value string) bool {
	switch Availability(value) {
	case AvailabilityFullTime, AvailabilityPartTime, AvailabilityWeekends, AvailabilityFlexible:
		return true
	default:
		return false
	}
}
