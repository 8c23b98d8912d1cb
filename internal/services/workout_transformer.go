package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"f3-nation/regionsync/internal/constants"
	"f3-nation/regionsync/internal/models/entities"
	"f3-nation/regionsync/internal/models/gorm"
)

// WorkoutTransformer validates denormalized warehouse events against the
// regions already in the serving store and maps the survivors to workouts.
type WorkoutTransformer struct {
	KnownRegionIDs map[string]struct{}
	LastIngested   map[string]*time.Time
	Force          bool
	Window         time.Duration
	Now            time.Time
	IngestedAt     time.Time
}

// Transform returns the workout for row, or nil and the first rule it broke.
// Freshness is checked before anything else.
func (t *WorkoutTransformer) Transform(row entities.WorkoutRow) (*gorm.Workout, constants.SkipReason) {
	id := strconv.FormatInt(row.ID, 10)

	if !t.Force && IsFresh(t.LastIngested[id], t.Window, t.Now) {
		return nil, constants.SkipFresh
	}

	types := dedupeTypes(row.EventTypes)
	if len(types) == 0 {
		return nil, constants.SkipMissingType
	}

	if row.AOOrgType == nil || *row.AOOrgType != constants.OrgTypeAO || row.AOIsActive == nil || !*row.AOIsActive {
		return nil, constants.SkipMissingAO
	}

	if row.RegionID == nil || row.RegionOrgType == nil || *row.RegionOrgType != constants.OrgTypeRegion ||
		row.RegionIsActive == nil || !*row.RegionIsActive {
		return nil, constants.SkipMissingRegion
	}
	regionID := strconv.FormatInt(*row.RegionID, 10)
	if _, ok := t.KnownRegionIDs[regionID]; !ok {
		return nil, constants.SkipMissingRegion
	}

	if blank(row.DayOfWeek) {
		return nil, constants.SkipMissingGroup
	}

	if row.LocationID == nil {
		return nil, constants.SkipMissingLocation
	}

	location := FormatLocation(row.Street, row.Street2, row.City, row.State, row.Zip, row.Country)
	ingestedAt := t.IngestedAt

	return &gorm.Workout{
		ID:             id,
		RegionID:       regionID,
		Name:           row.Name,
		Time:           FormatTimeRange(row.StartTime, row.EndTime),
		Type:           types[0],
		Types:          gorm.StringList(types),
		Group:          *row.DayOfWeek,
		Notes:          row.Notes,
		Latitude:       finite(row.Latitude),
		Longitude:      finite(row.Longitude),
		City:           row.City,
		State:          row.State,
		Zip:            row.Zip,
		Country:        row.Country,
		Location:       &location,
		LastIngestedAt: &ingestedAt,
	}, constants.SkipNone
}

// FormatTimeRange gives "start - end", whichever one is present, or ""
func FormatTimeRange(start, end *string) string {
	hasStart := !blank(start)
	hasEnd := !blank(end)

	switch {
	case hasStart && hasEnd:
		return *start + " - " + *end
	case hasStart:
		return *start
	case hasEnd:
		return *end
	default:
		return ""
	}
}

// FormatLocation joins the non-empty trimmed address parts with ", "
func FormatLocation(parts ...*string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == nil {
			continue
		}
		if s := strings.TrimSpace(*p); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}

// dedupeTypes drops empty names and repeats, keeping first-seen order
func dedupeTypes(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	f := *v
	return &f
}
