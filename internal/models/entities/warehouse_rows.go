package entities

import "time"

// RegionRow is one active warehouse org of type "region"
type RegionRow struct {
	ID          int64
	Name        string
	Description *string
	Website     *string
	LogoURL     *string
	Email       *string
	Facebook    *string
	Twitter     *string
	Instagram   *string
	Updated     time.Time
}

// WorkoutRow is one warehouse event denormalized with its AO, the AO's parent
// region, its location and all of its event type names.
type WorkoutRow struct {
	ID         int64
	AOID       int64
	LocationID *int64
	Name       string
	Notes      *string
	StartTime  *string
	EndTime    *string
	DayOfWeek  *string
	Updated    time.Time
	EventTypes []string

	AOOrgType      *string
	AOIsActive     *bool
	RegionID       *int64
	RegionOrgType  *string
	RegionIsActive *bool

	Latitude  *float64
	Longitude *float64
	Street    *string
	Street2   *string
	City      *string
	State     *string
	Zip       *string
	Country   *string
}
