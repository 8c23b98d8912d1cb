package dtos

// RegionGeometry is the derived address, map center and zoom of a region
type RegionGeometry struct {
	City      *string
	State     *string
	Zip       *string
	Country   *string
	Latitude  float64
	Longitude float64
	Zoom      int
}

// WorkoutPlace is the subset of a workout that enrichment reads
type WorkoutPlace struct {
	ID        string
	RegionID  string
	City      *string
	State     *string
	Zip       *string
	Country   *string
	Latitude  *float64
	Longitude *float64
}
