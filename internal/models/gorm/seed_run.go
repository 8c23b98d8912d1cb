package gorm

import "time"

// SeedRun records the last successful completion of a named sync job
type SeedRun struct {
	Key            string    `gorm:"column:key;primaryKey;type:varchar(64)"`
	LastIngestedAt time.Time `gorm:"column:last_ingested_at;not null"`
}

// TableName specifies the table name for GORM
func (SeedRun) TableName() string {
	return "seed_runs"
}
