package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"crew-assignment-service/internal/domain"
)

// JobRequestSeeder and CrewSeeder accept fixture records. Implemented by the Postgres
// repositories and MemoryStore.
type JobRequestSeeder interface {
	UpsertJobRequest(ctx context.Context, j *domain.JobRequest) error
}

type CrewSeeder interface {
	UpsertCrew(ctx context.Context, c *domain.Crew) error
}

type pointSeed struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (p pointSeed) geo() domain.GeoPoint {
	return domain.GeoPointFrom(domain.FromPtr(p.Lat), domain.FromPtr(p.Lng))
}

type CrewSeed struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	HomeBase             pointSeed `json:"home_base"`
	DailyCapacityMinutes int       `json:"daily_capacity_minutes"`
	Skills               []string  `json:"skills"`
	Equipment            []string  `json:"equipment"`
}

type JobRequestSeed struct {
	ID                string    `json:"id"`
	Address           string    `json:"address"`
	Location          pointSeed `json:"location"`
	LaborLowMinutes   *int      `json:"labor_low_minutes"`
	LaborHighMinutes  *int      `json:"labor_high_minutes"`
	CrewSizeMin       int       `json:"crew_size_min"`
	LotAreaSqft       *float64  `json:"lot_area_sqft"`
	PriceLowCents     *int64    `json:"price_low_cents"`
	PriceHighCents    *int64    `json:"price_high_cents"`
	RequiredEquipment []string  `json:"required_equipment"`
	RequestedDate     string    `json:"requested_date"`
}

type Fixtures struct {
	Crews       []CrewSeed       `json:"crews"`
	JobRequests []JobRequestSeed `json:"job_requests"`
}

// Populate crews and job requests from a JSON fixtures file.
func SeedFromJSON(ctx context.Context, crews CrewSeeder, jobs JobRequestSeeder, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed fixtures: read %q: %w", jsonPath, err)
	}

	var data Fixtures
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed fixtures: parse json: %w", err)
	}

	for i, item := range data.Crews {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return fmt.Errorf("seed crews: item at index %d: id cannot be empty", i+1)
		}

		c := &domain.Crew{
			ID:                   id,
			Name:                 item.Name,
			HomeBase:             item.HomeBase.geo(),
			DailyCapacityMinutes: item.DailyCapacityMinutes,
			Skills:               item.Skills,
			Equipment:            item.Equipment,
		}
		if err := crews.UpsertCrew(ctx, c); err != nil {
			return fmt.Errorf("seed crews: %w", err)
		}
	}

	for i, item := range data.JobRequests {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return fmt.Errorf("seed job requests: item at index %d: id cannot be empty", i+1)
		}

		requested := domain.None[time.Time]()
		if item.RequestedDate != "" {
			d, err := time.Parse(time.DateOnly, item.RequestedDate)
			if err != nil {
				return fmt.Errorf("seed job requests: %q requested_date: %w", id, err)
			}
			requested = domain.Some(d)
		}

		j := &domain.JobRequest{
			ID:                id,
			Address:           item.Address,
			Location:          item.Location.geo(),
			LaborLowMinutes:   domain.FromPtr(item.LaborLowMinutes),
			LaborHighMinutes:  domain.FromPtr(item.LaborHighMinutes),
			CrewSizeMin:       max(1, item.CrewSizeMin),
			LotAreaSqft:       domain.FromPtr(item.LotAreaSqft),
			PriceLowCents:     domain.FromPtr(item.PriceLowCents),
			PriceHighCents:    domain.FromPtr(item.PriceHighCents),
			RequiredEquipment: item.RequiredEquipment,
			RequestedDate:     requested,
		}
		if err := jobs.UpsertJobRequest(ctx, j); err != nil {
			return fmt.Errorf("seed job requests: %w", err)
		}
	}

	return nil
}
