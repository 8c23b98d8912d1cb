package services

import (
	"math"
	"sort"
	"strconv"

	"f3-nation/regionsync/internal/constants"
	"f3-nation/regionsync/internal/models/dtos"
	"f3-nation/regionsync/internal/models/gorm"
)

const (
	boundsPadding = 0.2
	kmPerDegree   = 111.0
	zoomBase      = 15.5
)

// ComputeRegionGeometry derives a region's address from its most common
// workout zip and its map center and zoom from the padded bounding box of
// workout coordinates. Regions without coordinates get the continental US
// default view. When no workout has a zip the region keeps its address.
func ComputeRegionGeometry(region gorm.Region, places []dtos.WorkoutPlace) dtos.RegionGeometry {
	g := dtos.RegionGeometry{
		City:    region.City,
		State:   region.State,
		Zip:     region.Zip,
		Country: region.Country,
	}

	if p := mostCommonZipPlace(places); p != nil {
		g.City = p.City
		g.State = p.State
		g.Zip = p.Zip
		g.Country = p.Country
	}

	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLng, maxLng := math.Inf(1), math.Inf(-1)
	withCoords := 0
	for _, p := range places {
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		withCoords++
		minLat = math.Min(minLat, *p.Latitude)
		maxLat = math.Max(maxLat, *p.Latitude)
		minLng = math.Min(minLng, *p.Longitude)
		maxLng = math.Max(maxLng, *p.Longitude)
	}

	if withCoords == 0 {
		g.Latitude = constants.DefaultRegionLatitude
		g.Longitude = constants.DefaultRegionLongitude
		g.Zoom = constants.DefaultRegionZoom
		return g
	}

	latPad := (maxLat - minLat) * boundsPadding
	lngPad := (maxLng - minLng) * boundsPadding
	minLat, maxLat = minLat-latPad, maxLat+latPad
	minLng, maxLng = minLng-lngPad, maxLng+lngPad

	g.Latitude = (minLat + maxLat) / 2
	g.Longitude = (minLng + maxLng) / 2
	g.Zoom = ZoomForSpan(math.Max(maxLat-minLat, maxLng-minLng))
	return g
}

// ZoomForSpan maps the widest axis of a box in degrees to a map zoom level.
// A zero span gives the closest zoom.
func ZoomForSpan(degrees float64) int {
	z := math.Floor(zoomBase - math.Log2(degrees*kmPerDegree))
	z = math.Max(z, constants.MinRegionZoom)
	z = math.Min(z, constants.MaxRegionZoom)
	return int(z)
}

// mostCommonZipPlace returns the first workout carrying the most frequent
// zip. Ties go to the first zip in key order: canonical integer zips
// ascending, then the rest (ZIP+4, leading zeros, postcodes) as first seen.
func mostCommonZipPlace(places []dtos.WorkoutPlace) *dtos.WorkoutPlace {
	counts := make(map[string]int)
	var numeric, other []string
	for _, p := range places {
		if blank(p.Zip) {
			continue
		}
		zip := *p.Zip
		if _, ok := counts[zip]; !ok {
			if _, isIndex := integerKey(zip); isIndex {
				numeric = append(numeric, zip)
			} else {
				other = append(other, zip)
			}
		}
		counts[zip]++
	}
	if len(counts) == 0 {
		return nil
	}

	sort.Slice(numeric, func(i, j int) bool {
		a, _ := integerKey(numeric[i])
		b, _ := integerKey(numeric[j])
		return a < b
	})
	order := append(numeric, other...)

	best := order[0]
	for _, zip := range order[1:] {
		if counts[zip] > counts[best] {
			best = zip
		}
	}

	for i := range places {
		if places[i].Zip != nil && *places[i].Zip == best {
			return &places[i]
		}
	}
	return nil
}

// integerKey parses zip when it is a canonical non-negative integer below
// 2^32-1, with no sign and no leading zero
func integerKey(zip string) (uint64, bool) {
	if zip == "" || (len(zip) > 1 && zip[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(zip, 10, 64)
	if err != nil || n >= math.MaxUint32 {
		return 0, false
	}
	return n, true
}
