package gorm

import "time"

// Region is the serving-store projection of a warehouse org of type "region"
type Region struct {
	ID             string     `gorm:"column:id;primaryKey;type:varchar(64)"`
	Slug           *string    `gorm:"column:slug;type:varchar(255);uniqueIndex"`
	Name           string     `gorm:"column:name;type:varchar(255);not null;uniqueIndex"`
	Description    *string    `gorm:"column:description;type:varchar"`
	Website        *string    `gorm:"column:website;type:varchar"`
	Image          *string    `gorm:"column:image;type:varchar"`
	City           *string    `gorm:"column:city;type:varchar"`
	State          *string    `gorm:"column:state;type:varchar"`
	Zip            *string    `gorm:"column:zip;type:varchar"`
	Country        *string    `gorm:"column:country;type:varchar"`
	Latitude       *float64   `gorm:"column:latitude"`
	Longitude      *float64   `gorm:"column:longitude"`
	Zoom           *int       `gorm:"column:zoom"`
	Email          *string    `gorm:"column:email;type:varchar"`
	Facebook       *string    `gorm:"column:facebook;type:varchar"`
	Twitter        *string    `gorm:"column:twitter;type:varchar"`
	Instagram      *string    `gorm:"column:instagram;type:varchar"`
	LastIngestedAt *time.Time `gorm:"column:last_ingested_at"`
}

// TableName specifies the table name for GORM
func (Region) TableName() string {
	return "regions"
}
