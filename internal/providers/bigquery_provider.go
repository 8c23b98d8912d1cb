package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"f3-nation/regionsync/internal/config"
	"f3-nation/regionsync/internal/constants"
	"f3-nation/regionsync/internal/logging"
	"f3-nation/regionsync/internal/models/entities"
)

// BigQueryProvider reads the warehouse with one denormalized query per batch
type BigQueryProvider struct {
	credentials []byte
	projectID   string
	dataset     string
	location    string

	mu     sync.Mutex
	client *bigquery.Client
}

// Ensure BigQueryProvider implements WarehouseProvider
var _ WarehouseProvider = (*BigQueryProvider)(nil)

func NewBigQueryProvider(cfg config.WarehouseConfig) (*BigQueryProvider, error) {
	projectID, err := cfg.ProjectID()
	if err != nil {
		return nil, err
	}

	return &BigQueryProvider{
		credentials: []byte(cfg.Credentials),
		projectID:   projectID,
		dataset:     cfg.Dataset,
		location:    cfg.Location,
	}, nil
}

func (p *BigQueryProvider) GetProviderType() string {
	return "bigquery"
}

// getClient creates the client on first use and checks the dataset exists
func (p *BigQueryProvider) getClient(ctx context.Context) (*bigquery.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	client, err := bigquery.NewClient(ctx, p.projectID, option.WithCredentialsJSON(p.credentials))
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}
	client.Location = p.location

	if _, err := client.Dataset(p.dataset).Metadata(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get dataset metadata for %s.%s: %w", p.projectID, p.dataset, err)
	}

	logging.Info("Connected to BigQuery warehouse",
		"project_id", p.projectID,
		"dataset", p.dataset,
		"location", p.location,
	)
	p.client = client
	return client, nil
}

func (p *BigQueryProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}

func (p *BigQueryProvider) query(ctx context.Context, sql string, params []bigquery.QueryParameter) (*bigquery.RowIterator, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	q := client.Query(sql)
	q.DefaultProjectID = p.projectID
	q.DefaultDatasetID = p.dataset
	q.Location = p.location
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("bigquery query failed: %w", err)
	}
	return it, nil
}

// batchParams binds absent cursor and floor values as typed NULLs
func batchParams(q BatchQuery) []bigquery.QueryParameter {
	updatedAfter := bigquery.NullTimestamp{}
	if q.UpdatedAfter != nil {
		updatedAfter = bigquery.NullTimestamp{Timestamp: q.UpdatedAfter.UTC(), Valid: true}
	}

	cursorUpdated := bigquery.NullTimestamp{}
	cursorID := bigquery.NullInt64{}
	if q.Cursor != nil {
		cursorUpdated = bigquery.NullTimestamp{Timestamp: q.Cursor.Updated.UTC(), Valid: true}
		cursorID = bigquery.NullInt64{Int64: q.Cursor.ID, Valid: true}
	}

	return []bigquery.QueryParameter{
		{Name: "batchSize", Value: int64(q.BatchSize)},
		{Name: "updatedAfter", Value: updatedAfter},
		{Name: "cursorUpdated", Value: cursorUpdated},
		{Name: "cursorId", Value: cursorID},
	}
}

func (p *BigQueryProvider) readIDs(ctx context.Context, sql string) ([]string, error) {
	it, err := p.query(ctx, sql, nil)
	if err != nil {
		return nil, err
	}

	var ids []string
	for {
		var row struct {
			ID string `bigquery:"id"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read id row: %w", err)
		}
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (p *BigQueryProvider) ActiveRegionIDs(ctx context.Context) ([]string, error) {
	return p.readIDs(ctx, constants.BQActiveRegionIDs)
}

func (p *BigQueryProvider) ActiveEventIDs(ctx context.Context) ([]string, error) {
	return p.readIDs(ctx, constants.BQActiveEventIDs)
}

// bqRegionRow is the raw shape of BQRegionBatch
type bqRegionRow struct {
	ID          bigquery.NullInt64     `bigquery:"id"`
	Name        bigquery.NullString    `bigquery:"name"`
	Description bigquery.NullString    `bigquery:"description"`
	Website     bigquery.NullString    `bigquery:"website"`
	LogoURL     bigquery.NullString    `bigquery:"logo_url"`
	Email       bigquery.NullString    `bigquery:"email"`
	Facebook    bigquery.NullString    `bigquery:"facebook"`
	Twitter     bigquery.NullString    `bigquery:"twitter"`
	Instagram   bigquery.NullString    `bigquery:"instagram"`
	Updated     bigquery.NullTimestamp `bigquery:"updated"`
}

func (r bqRegionRow) toEntity() (entities.RegionRow, error) {
	if !r.ID.Valid || !r.Updated.Valid || !r.Name.Valid {
		return entities.RegionRow{}, fmt.Errorf("%w: region id=%v", ErrMalformedRow, r.ID)
	}
	return entities.RegionRow{
		ID:          r.ID.Int64,
		Name:        r.Name.StringVal,
		Description: nullString(r.Description),
		Website:     nullString(r.Website),
		LogoURL:     nullString(r.LogoURL),
		Email:       nullString(r.Email),
		Facebook:    nullString(r.Facebook),
		Twitter:     nullString(r.Twitter),
		Instagram:   nullString(r.Instagram),
		Updated:     r.Updated.Timestamp.UTC(),
	}, nil
}

func (p *BigQueryProvider) FetchRegionBatch(ctx context.Context, q BatchQuery) ([]entities.RegionRow, error) {
	it, err := p.query(ctx, constants.BQRegionBatch, batchParams(q))
	if err != nil {
		return nil, err
	}

	rows := make([]entities.RegionRow, 0, q.BatchSize)
	for {
		var raw bqRegionRow
		err := it.Next(&raw)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read region row: %w", err)
		}
		row, err := raw.toEntity()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// bqWorkoutRow is the raw shape of BQWorkoutBatch
type bqWorkoutRow struct {
	ID             bigquery.NullInt64     `bigquery:"id"`
	AOID           bigquery.NullInt64     `bigquery:"ao_id"`
	LocationID     bigquery.NullInt64     `bigquery:"location_id"`
	Name           bigquery.NullString    `bigquery:"name"`
	Notes          bigquery.NullString    `bigquery:"notes"`
	StartTime      bigquery.NullString    `bigquery:"start_time"`
	EndTime        bigquery.NullString    `bigquery:"end_time"`
	DayOfWeek      bigquery.NullString    `bigquery:"day_of_week"`
	Updated        bigquery.NullTimestamp `bigquery:"updated"`
	EventTypes     []string               `bigquery:"event_types"`
	AOOrgType      bigquery.NullString    `bigquery:"ao_org_type"`
	AOIsActive     bigquery.NullBool      `bigquery:"ao_is_active"`
	RegionID       bigquery.NullInt64     `bigquery:"region_id"`
	RegionOrgType  bigquery.NullString    `bigquery:"region_org_type"`
	RegionIsActive bigquery.NullBool      `bigquery:"region_is_active"`
	Latitude       bigquery.NullFloat64   `bigquery:"latitude"`
	Longitude      bigquery.NullFloat64   `bigquery:"longitude"`
	Street         bigquery.NullString    `bigquery:"street"`
	Street2        bigquery.NullString    `bigquery:"street2"`
	City           bigquery.NullString    `bigquery:"city"`
	State          bigquery.NullString    `bigquery:"state"`
	Zip            bigquery.NullString    `bigquery:"zip"`
	Country        bigquery.NullString    `bigquery:"country"`
}

func (r bqWorkoutRow) toEntity() (entities.WorkoutRow, error) {
	if !r.ID.Valid || !r.Updated.Valid || !r.AOID.Valid {
		return entities.WorkoutRow{}, fmt.Errorf("%w: event id=%v", ErrMalformedRow, r.ID)
	}
	return entities.WorkoutRow{
		ID:             r.ID.Int64,
		AOID:           r.AOID.Int64,
		LocationID:     nullInt64(r.LocationID),
		Name:           r.Name.StringVal,
		Notes:          nullString(r.Notes),
		StartTime:      nullString(r.StartTime),
		EndTime:        nullString(r.EndTime),
		DayOfWeek:      nullString(r.DayOfWeek),
		Updated:        r.Updated.Timestamp.UTC(),
		EventTypes:     r.EventTypes,
		AOOrgType:      nullString(r.AOOrgType),
		AOIsActive:     nullBool(r.AOIsActive),
		RegionID:       nullInt64(r.RegionID),
		RegionOrgType:  nullString(r.RegionOrgType),
		RegionIsActive: nullBool(r.RegionIsActive),
		Latitude:       nullFloat64(r.Latitude),
		Longitude:      nullFloat64(r.Longitude),
		Street:         nullString(r.Street),
		Street2:        nullString(r.Street2),
		City:           nullString(r.City),
		State:          nullString(r.State),
		Zip:            nullString(r.Zip),
		Country:        nullString(r.Country),
	}, nil
}

func (p *BigQueryProvider) FetchWorkoutBatch(ctx context.Context, q BatchQuery) ([]entities.WorkoutRow, error) {
	start := time.Now()
	it, err := p.query(ctx, constants.BQWorkoutBatch, batchParams(q))
	if err != nil {
		return nil, err
	}

	rows := make([]entities.WorkoutRow, 0, q.BatchSize)
	for {
		var raw bqWorkoutRow
		err := it.Next(&raw)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read workout row: %w", err)
		}
		row, err := raw.toEntity()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	logging.Debug("Fetched workout batch from BigQuery",
		"rows", len(rows),
		"cursor", q.Cursor.Encode(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rows, nil
}

func nullString(v bigquery.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.StringVal
	return &s
}

func nullInt64(v bigquery.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullFloat64(v bigquery.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullBool(v bigquery.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}
