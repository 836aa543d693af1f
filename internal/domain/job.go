package domain

import "time"

// Customer job awaiting crew assignment. Owned by the intake collaborator.
type JobRequest struct {
	ID                string
	Address           string
	Location          GeoPoint
	LaborLowMinutes   Optional[int]
	LaborHighMinutes  Optional[int]
	CrewSizeMin       int
	LotAreaSqft       Optional[float64]
	PriceLowCents     Optional[int64]
	PriceHighCents    Optional[int64]
	RequiredEquipment []string
	RequestedDate     Optional[time.Time]
	AssignedCrewID    string
	ScheduledDate     Optional[time.Time]
}

// Crew is a field team with a home base.
type Crew struct {
	ID                   string
	Name                 string
	HomeBase             GeoPoint
	DailyCapacityMinutes int
	Skills               []string
	Equipment            []string
}

// HasEquipment reports whether the crew carries name (normalized comparison).
func (c Crew) HasEquipment(name string) bool {
	want := NormalizeEquipment(name)
	for _, e := range c.Equipment {
		if NormalizeEquipment(e) == want {
			return true
		}
	}
	return false
}
