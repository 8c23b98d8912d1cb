package services

import (
	"strconv"
	"time"

	"f3-nation/regionsync/internal/models/entities"
	"f3-nation/regionsync/internal/models/gorm"
)

// TransformRegion maps a warehouse region to its serving row. Address, center
// and zoom stay nil; they belong to enrichment.
func TransformRegion(row entities.RegionRow, ingestedAt time.Time) gorm.Region {
	slug := KebabCase(row.Name)
	ts := ingestedAt

	region := gorm.Region{
		ID:             strconv.FormatInt(row.ID, 10),
		Name:           row.Name,
		Description:    row.Description,
		Website:        row.Website,
		Image:          row.LogoURL,
		Email:          NormalizeEmail(row.Email),
		Facebook:       TransformFacebookURL(row.Facebook),
		Twitter:        TransformTwitterURL(row.Twitter),
		Instagram:      TransformInstagramURL(row.Instagram),
		LastIngestedAt: &ts,
	}
	if slug != "" {
		region.Slug = &slug
	}
	return region
}
