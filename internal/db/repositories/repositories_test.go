package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"f3-nation/regionsync/internal/models/dtos"
	gormModels "f3-nation/regionsync/internal/models/gorm"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// :memory: is per connection, so pin the pool to one
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&gormModels.Region{}, &gormModels.Workout{}, &gormModels.SeedRun{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func strPtr(s string) *string { return &s }

func countByRegion(t *testing.T, db *gorm.DB, regionID string) int64 {
	var count int64
	if err := db.Model(&gormModels.Workout{}).Where("region_id = ?", regionID).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count workouts: %v", err)
	}
	return count
}

func TestSeedRunRepo_RecordAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSeedRunRepo(db)
	ctx := context.Background()

	last, err := repo.GetLastIngestedAt(ctx, "daily-ingest")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if last != nil {
		t.Fatalf("Expected nil for unknown key, got %v", last)
	}

	first := time.Date(2026, 10, 1, 6, 0, 0, 0, time.UTC)
	if err := repo.RecordRun(ctx, "daily-ingest", first); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second := first.Add(24 * time.Hour)
	if err := repo.RecordRun(ctx, "daily-ingest", second); err != nil {
		t.Fatalf("Expected no error on second record, got %v", err)
	}

	last, err = repo.GetLastIngestedAt(ctx, "daily-ingest")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if last == nil || !last.Equal(second) {
		t.Errorf("Expected %v, got %v", second, last)
	}

	var count int64
	db.Model(&gormModels.SeedRun{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 seed run row, got %d", count)
	}
}

func TestRegionRepo_UpsertPreservesGeometry(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegionRepo(db)
	ctx := context.Background()

	regions := []gormModels.Region{
		{ID: "1", Name: "Nashville", Slug: strPtr("nashville")},
		{ID: "2", Name: "Boone", Slug: strPtr("boone")},
	}
	if err := repo.UpsertBatch(ctx, regions, 4); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	err := repo.UpdateGeometry(ctx, "1", dtos.RegionGeometry{
		City:      strPtr("Nashville"),
		Zip:       strPtr("37203"),
		Latitude:  36.16,
		Longitude: -86.78,
		Zoom:      11,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	updated := []gormModels.Region{
		{ID: "1", Name: "Nashville", Slug: strPtr("nashville"), Website: strPtr("https://f3nashville.com")},
	}
	if err := repo.UpsertBatch(ctx, updated, 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var got gormModels.Region
	if err := db.First(&got, "id = ?", "1").Error; err != nil {
		t.Fatalf("Region not found: %v", err)
	}
	if got.Website == nil || *got.Website != "https://f3nashville.com" {
		t.Errorf("Expected website to be updated, got %v", got.Website)
	}
	if got.Zoom == nil || *got.Zoom != 11 {
		t.Errorf("Expected zoom 11 to survive upsert, got %v", got.Zoom)
	}
	if got.Zip == nil || *got.Zip != "37203" {
		t.Errorf("Expected zip 37203 to survive upsert, got %v", got.Zip)
	}

	ids, err := repo.ListIDs(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 region ids, got %d", len(ids))
	}
}

func TestRegionRepo_UpsertFailureNamesRecord(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegionRepo(db)
	ctx := context.Background()

	if err := repo.UpsertBatch(ctx, []gormModels.Region{{ID: "1", Name: "Nashville"}}, 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Same name under a new id violates the unique name index
	err := repo.UpsertBatch(ctx, []gormModels.Region{{ID: "9", Name: "Nashville"}}, 1)
	if err == nil {
		t.Fatal("Expected unique violation")
	}

	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Expected WriteError, got %T: %v", err, err)
	}
	if writeErr.ID != "9" || writeErr.Name != "Nashville" {
		t.Errorf("Expected failing record 9/Nashville, got %s/%s", writeErr.ID, writeErr.Name)
	}
}

func TestRegionRepo_DeleteWithWorkouts(t *testing.T) {
	db := setupTestDB(t)
	regions := NewRegionRepo(db)
	workouts := NewWorkoutRepo(db)
	ctx := context.Background()

	if err := regions.UpsertBatch(ctx, []gormModels.Region{{ID: "1", Name: "Nashville"}, {ID: "2", Name: "Boone"}}, 2); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	ws := []gormModels.Workout{
		{ID: "10", RegionID: "1", Name: "The Wall", Time: "0530 - 0615", Type: "Bootcamp", Group: "Monday"},
		{ID: "11", RegionID: "1", Name: "The Yard", Time: "0530 - 0615", Type: "Run", Group: "Tuesday"},
		{ID: "20", RegionID: "2", Name: "Howard Knob", Time: "0600", Type: "Ruck", Group: "Saturday"},
	}
	if err := workouts.UpsertBatch(ctx, ws, 8); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	removed, err := regions.DeleteWithWorkouts(ctx, "1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 workouts removed, got %d", removed)
	}

	left := countByRegion(t, db, "1")
	if left != 0 {
		t.Errorf("Expected no workouts left for region 1, got %d", left)
	}
	other := countByRegion(t, db, "2")
	if other != 1 {
		t.Errorf("Expected region 2 workouts untouched, got %d", other)
	}
}

func TestWorkoutRepo_UpsertRoundTripsTypes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkoutRepo(db)
	ctx := context.Background()

	w := gormModels.Workout{
		ID: "10", RegionID: "1", Name: "6:00 AM Bootcamp", Time: "0600 - 0645",
		Type: "Bootcamp", Types: gormModels.StringList{"Bootcamp", "Run"}, Group: "Monday",
	}
	if err := repo.UpsertBatch(ctx, []gormModels.Workout{w}, 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	w.Types = gormModels.StringList{"Ruck"}
	w.Type = "Ruck"
	if err := repo.UpsertBatch(ctx, []gormModels.Workout{w}, 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var got gormModels.Workout
	if err := db.First(&got, "id = ?", "10").Error; err != nil {
		t.Fatalf("Workout not found: %v", err)
	}
	if got.Type != "Ruck" || len(got.Types) != 1 || got.Types[0] != "Ruck" {
		t.Errorf("Expected types [Ruck], got %s %v", got.Type, got.Types)
	}
	if got.Group != "Monday" {
		t.Errorf("Expected group Monday, got %s", got.Group)
	}
}

func TestWorkoutRepo_DeleteByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkoutRepo(db)
	ctx := context.Background()

	var ws []gormModels.Workout
	for i := 0; i < 3; i++ {
		id := string(rune('a' + i))
		ws = append(ws, gormModels.Workout{ID: id, RegionID: "1", Name: id, Time: "", Type: "Bootcamp", Group: "Friday"})
	}
	if err := repo.UpsertBatch(ctx, ws, 2); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	removed, err := repo.DeleteByIDs(ctx, []string{"a", "c", "missing"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}

	refs, err := repo.ListRefs(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(refs) != 1 || refs[0].ID != "b" {
		t.Errorf("Expected only workout b left, got %+v", refs)
	}
}
