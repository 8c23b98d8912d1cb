package gorm

import "time"

// Workout is the serving-store projection of a warehouse event owned by an AO.
// City/State/Zip/Country are kept per workout so enrichment can derive the
// region's address.
type Workout struct {
	ID             string     `gorm:"column:id;primaryKey;type:varchar(64)"`
	RegionID       string     `gorm:"column:region_id;type:varchar(64);not null;index"`
	Name           string     `gorm:"column:name;type:varchar;not null"`
	Time           string     `gorm:"column:time;type:varchar;not null"`
	Type           string     `gorm:"column:type;type:varchar;not null"`
	Types          StringList `gorm:"column:types"`
	Group          string     `gorm:"column:group;type:varchar;not null"`
	Notes          *string    `gorm:"column:notes;type:varchar"`
	Latitude       *float64   `gorm:"column:latitude"`
	Longitude      *float64   `gorm:"column:longitude"`
	City           *string    `gorm:"column:city;type:varchar"`
	State          *string    `gorm:"column:state;type:varchar"`
	Zip            *string    `gorm:"column:zip;type:varchar"`
	Country        *string    `gorm:"column:country;type:varchar"`
	Location       *string    `gorm:"column:location;type:varchar"`
	LastIngestedAt *time.Time `gorm:"column:last_ingested_at"`

	// Relationships
	Region *Region `gorm:"foreignKey:RegionID;references:ID"`
}

// TableName specifies the table name for GORM
func (Workout) TableName() string {
	return "workouts"
}
