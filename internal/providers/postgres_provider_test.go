package providers

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"f3-nation/regionsync/internal/models/entities"
)

const warehouseSchema = `
CREATE TABLE orgs (
	id INTEGER PRIMARY KEY,
	parent_id INTEGER,
	org_type TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	is_active BOOLEAN NOT NULL,
	website TEXT,
	logo_url TEXT,
	email TEXT,
	facebook TEXT,
	twitter TEXT,
	instagram TEXT,
	updated TIMESTAMP NOT NULL
);
CREATE TABLE locations (
	id INTEGER PRIMARY KEY,
	latitude REAL,
	longitude REAL,
	address_street TEXT,
	address_street2 TEXT,
	address_city TEXT,
	address_state TEXT,
	address_zip TEXT,
	address_country TEXT
);
CREATE TABLE events (
	id INTEGER PRIMARY KEY,
	org_id INTEGER NOT NULL,
	location_id INTEGER,
	name TEXT NOT NULL,
	description TEXT,
	start_time TEXT,
	end_time TEXT,
	day_of_week TEXT,
	is_active BOOLEAN NOT NULL,
	updated TIMESTAMP NOT NULL
);
CREATE TABLE event_types (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE events_x_event_types (
	event_id INTEGER NOT NULL,
	event_type_id INTEGER NOT NULL
);
`

var warehouseBase = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

// setupWarehouse loads a small warehouse: two active regions, one inactive
// region, AOs under each and four events.
func setupWarehouse(t *testing.T) *PostgresProvider {
	conn, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open warehouse: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	conn.MustExec(warehouseSchema)

	orgs := []struct {
		id       int64
		parent   interface{}
		orgType  string
		name     string
		active   bool
		twitter  interface{}
		offsetMn int
	}{
		{1, nil, "region", "F3 Nashville", true, "@f3nashville", 0},
		{2, nil, "region", "F3 Boone", true, nil, 0},
		{3, nil, "region", "F3 Gone", false, nil, 5},
		{10, int64(1), "ao", "The Wall", true, nil, 0},
		{20, int64(2), "ao", "Howard Knob", true, nil, 0},
		{30, int64(3), "ao", "Ghost AO", true, nil, 0},
	}
	for _, o := range orgs {
		conn.MustExec(`INSERT INTO orgs (id, parent_id, org_type, name, is_active, twitter, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.id, o.parent, o.orgType, o.name, o.active, o.twitter, warehouseBase.Add(time.Duration(o.offsetMn)*time.Minute))
	}

	conn.MustExec(`INSERT INTO locations (id, latitude, longitude, address_street, address_street2, address_city, address_state, address_zip, address_country)
		VALUES (100, 36.16, -86.78, '600 Broadway', 'Suite 2', 'Nashville', 'TN', '37203', 'US')`)

	events := []struct {
		id       int64
		org      int64
		location interface{}
		name     string
		active   bool
		offsetMn int
	}{
		{1000, 10, int64(100), "The Wall", true, 1},
		{1001, 10, nil, "The Wall Saturday", true, 1},
		{1002, 20, nil, "Howard Knob", true, 2},
		{1003, 30, nil, "Ghost Workout", true, 3},
		{1004, 10, nil, "Retired", false, 4},
	}
	for _, e := range events {
		conn.MustExec(`INSERT INTO events (id, org_id, location_id, name, start_time, end_time, day_of_week, is_active, updated) VALUES (?, ?, ?, ?, '0530', '0615', 'monday', ?, ?)`,
			e.id, e.org, e.location, e.name, e.active, warehouseBase.Add(time.Duration(e.offsetMn)*time.Minute))
	}

	conn.MustExec(`INSERT INTO event_types (id, name) VALUES (1, 'Run'), (2, 'Bootcamp')`)
	conn.MustExec(`INSERT INTO events_x_event_types (event_id, event_type_id) VALUES (1000, 1), (1000, 2), (1002, 1)`)

	return NewPostgresProviderWithDB(conn)
}

func TestPostgresProvider_ActiveIDs(t *testing.T) {
	p := setupWarehouse(t)
	ctx := context.Background()

	regions, err := p.ActiveRegionIDs(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(regions) != 2 {
		t.Errorf("Expected 2 active regions, got %v", regions)
	}

	events, err := p.ActiveEventIDs(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// 1003 is active but its AO sits under an inactive region
	if len(events) != 3 {
		t.Errorf("Expected 3 eligible events, got %v", events)
	}
}

func TestPostgresProvider_FetchRegionBatch(t *testing.T) {
	p := setupWarehouse(t)
	ctx := context.Background()

	first, err := p.FetchRegionBatch(ctx, BatchQuery{BatchSize: 1})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(first) != 1 || first[0].ID != 1 {
		t.Fatalf("Expected region 1 first, got %+v", first)
	}
	if first[0].Twitter == nil || *first[0].Twitter != "@f3nashville" {
		t.Errorf("Expected raw twitter handle, got %v", first[0].Twitter)
	}
	if !first[0].Updated.Equal(warehouseBase) {
		t.Errorf("Expected updated %v, got %v", warehouseBase, first[0].Updated)
	}

	cursor := RegionCursor(first[0])
	second, err := p.FetchRegionBatch(ctx, BatchQuery{BatchSize: 10, Cursor: &cursor})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(second) != 1 || second[0].ID != 2 {
		t.Errorf("Expected only region 2 after cursor, got %+v", second)
	}
}

func TestPostgresProvider_FetchWorkoutBatch(t *testing.T) {
	p := setupWarehouse(t)
	ctx := context.Background()

	rows, err := p.FetchWorkoutBatch(ctx, BatchQuery{BatchSize: 10})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected 4 active events, got %d", len(rows))
	}

	wall := rows[0]
	if wall.ID != 1000 {
		t.Fatalf("Expected event 1000 first, got %d", wall.ID)
	}
	if wall.AOOrgType == nil || *wall.AOOrgType != "ao" {
		t.Errorf("Expected AO org type, got %v", wall.AOOrgType)
	}
	if wall.RegionID == nil || *wall.RegionID != 1 {
		t.Errorf("Expected region 1, got %v", wall.RegionID)
	}
	if wall.RegionOrgType == nil || *wall.RegionOrgType != "region" {
		t.Errorf("Expected region org type, got %v", wall.RegionOrgType)
	}
	if wall.City == nil || *wall.City != "Nashville" || wall.Street2 == nil || *wall.Street2 != "Suite 2" {
		t.Errorf("Expected location fields, got city=%v street2=%v", wall.City, wall.Street2)
	}
	if len(wall.EventTypes) != 2 || wall.EventTypes[0] != "Bootcamp" || wall.EventTypes[1] != "Run" {
		t.Errorf("Expected sorted event types [Bootcamp Run], got %v", wall.EventTypes)
	}

	saturday := rows[1]
	if saturday.Latitude != nil || saturday.City != nil {
		t.Errorf("Expected no location for event without one, got %+v", saturday)
	}
	if len(saturday.EventTypes) != 0 {
		t.Errorf("Expected no event types, got %v", saturday.EventTypes)
	}

	ghost := rows[3]
	if ghost.RegionIsActive == nil || *ghost.RegionIsActive {
		t.Errorf("Expected inactive parent region, got %v", ghost.RegionIsActive)
	}
}

func TestPostgresProvider_WorkoutFloorAndCursor(t *testing.T) {
	p := setupWarehouse(t)
	ctx := context.Background()

	floor := warehouseBase.Add(2 * time.Minute)
	rows, err := p.FetchWorkoutBatch(ctx, BatchQuery{BatchSize: 10, UpdatedAfter: &floor})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 2 || rows[0].ID != 1002 || rows[1].ID != 1003 {
		t.Errorf("Expected events 1002 and 1003 at/after floor, got %+v", rows)
	}

	// 1000 and 1001 share a timestamp, so the id tie-break decides
	cursor := Cursor{Updated: warehouseBase.Add(time.Minute), ID: 1000}
	rows, err = p.FetchWorkoutBatch(ctx, BatchQuery{BatchSize: 1, Cursor: &cursor})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 1001 {
		t.Errorf("Expected event 1001 after cursor, got %+v", rows)
	}
}

func TestPostgresProvider_ScanAllWorkouts(t *testing.T) {
	p := setupWarehouse(t)
	ctx := context.Background()

	var ids []int64
	stats, err := ScanBatches(ctx, ScanOptions{BatchSize: 2}, p.FetchWorkoutBatch, WorkoutCursor,
		func(ctx context.Context, n int, rows []entities.WorkoutRow) error {
			for _, r := range rows {
				ids = append(ids, r.ID)
			}
			return nil
		})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// two full batches, then an empty one ends the scan
	if stats.Batches != 2 {
		t.Errorf("Expected 2 batches, got %d", stats.Batches)
	}
	want := []int64{1000, 1001, 1002, 1003}
	if len(ids) != len(want) {
		t.Fatalf("Expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, ids)
			break
		}
	}
}
