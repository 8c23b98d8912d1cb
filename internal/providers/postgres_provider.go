package providers

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"f3-nation/regionsync/internal/constants"
	"f3-nation/regionsync/internal/db"
	"f3-nation/regionsync/internal/models/entities"
)

// PostgresProvider reads the warehouse's Postgres replica. Each workout batch
// is one page query over events followed by one query each for orgs,
// locations and event types covering the whole page.
type PostgresProvider struct {
	dsn string

	mu   sync.Mutex
	conn *sqlx.DB
}

// Ensure PostgresProvider implements WarehouseProvider
var _ WarehouseProvider = (*PostgresProvider)(nil)

func NewPostgresProvider(dsn string) *PostgresProvider {
	return &PostgresProvider{dsn: dsn}
}

// NewPostgresProviderWithDB wraps an already open connection
func NewPostgresProviderWithDB(conn *sqlx.DB) *PostgresProvider {
	return &PostgresProvider{conn: conn}
}

func (p *PostgresProvider) GetProviderType() string {
	return "postgres"
}

func (p *PostgresProvider) getConn() (*sqlx.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		return p.conn, nil
	}
	conn, err := db.InitWarehousePostgres(p.dsn)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

func (p *PostgresProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *PostgresProvider) readIDs(ctx context.Context, query string) ([]string, error) {
	conn, err := p.getConn()
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := conn.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("warehouse query failed: %w", err)
	}

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out, nil
}

func (p *PostgresProvider) ActiveRegionIDs(ctx context.Context) ([]string, error) {
	return p.readIDs(ctx, constants.PGActiveRegionIDs)
}

func (p *PostgresProvider) ActiveEventIDs(ctx context.Context) ([]string, error) {
	return p.readIDs(ctx, constants.PGActiveEventIDs)
}

// pageQuery appends the floor and cursor predicates that apply to q
func pageQuery(base string, q BatchQuery) (string, map[string]interface{}) {
	query := base
	args := map[string]interface{}{
		"batch_size": q.BatchSize,
	}

	if q.UpdatedAfter != nil {
		query += constants.PGUpdatedAfterClause
		args["updated_after"] = q.UpdatedAfter.UTC()
	}
	if q.Cursor != nil {
		query += constants.PGCursorClause
		args["cursor_updated"] = q.Cursor.Updated.UTC()
		args["cursor_id"] = q.Cursor.ID
	}

	return query + constants.PGPageOrder, args
}

func (p *PostgresProvider) selectNamed(ctx context.Context, conn *sqlx.DB, dest interface{}, query string, args map[string]interface{}) error {
	bound, params, err := sqlx.Named(query, args)
	if err != nil {
		return fmt.Errorf("failed to bind query: %w", err)
	}
	if err := conn.SelectContext(ctx, dest, conn.Rebind(bound), params...); err != nil {
		return fmt.Errorf("warehouse query failed: %w", err)
	}
	return nil
}

func (p *PostgresProvider) selectIn(ctx context.Context, conn *sqlx.DB, dest interface{}, query string, ids []int64) error {
	bound, params, err := sqlx.In(query, ids)
	if err != nil {
		return fmt.Errorf("failed to expand query: %w", err)
	}
	if err := conn.SelectContext(ctx, dest, conn.Rebind(bound), params...); err != nil {
		return fmt.Errorf("warehouse query failed: %w", err)
	}
	return nil
}

type pgRegionRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Website     sql.NullString `db:"website"`
	LogoURL     sql.NullString `db:"logo_url"`
	Email       sql.NullString `db:"email"`
	Facebook    sql.NullString `db:"facebook"`
	Twitter     sql.NullString `db:"twitter"`
	Instagram   sql.NullString `db:"instagram"`
	Updated     time.Time      `db:"updated"`
}

func (p *PostgresProvider) FetchRegionBatch(ctx context.Context, q BatchQuery) ([]entities.RegionRow, error) {
	conn, err := p.getConn()
	if err != nil {
		return nil, err
	}

	query, args := pageQuery(constants.PGRegionPage, q)
	var raw []pgRegionRow
	if err := p.selectNamed(ctx, conn, &raw, query, args); err != nil {
		return nil, err
	}

	rows := make([]entities.RegionRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, entities.RegionRow{
			ID:          r.ID,
			Name:        r.Name,
			Description: sqlString(r.Description),
			Website:     sqlString(r.Website),
			LogoURL:     sqlString(r.LogoURL),
			Email:       sqlString(r.Email),
			Facebook:    sqlString(r.Facebook),
			Twitter:     sqlString(r.Twitter),
			Instagram:   sqlString(r.Instagram),
			Updated:     r.Updated.UTC(),
		})
	}
	return rows, nil
}

type pgEventRow struct {
	ID         int64          `db:"id"`
	OrgID      int64          `db:"org_id"`
	LocationID sql.NullInt64  `db:"location_id"`
	Name       string         `db:"name"`
	Notes      sql.NullString `db:"description"`
	StartTime  sql.NullString `db:"start_time"`
	EndTime    sql.NullString `db:"end_time"`
	DayOfWeek  sql.NullString `db:"day_of_week"`
	Updated    time.Time      `db:"updated"`
}

type pgOrgRow struct {
	ID             int64          `db:"id"`
	OrgType        sql.NullString `db:"org_type"`
	IsActive       sql.NullBool   `db:"is_active"`
	ParentID       sql.NullInt64  `db:"parent_id"`
	ParentOrgType  sql.NullString `db:"parent_org_type"`
	ParentIsActive sql.NullBool   `db:"parent_is_active"`
}

type pgLocationRow struct {
	ID        int64           `db:"id"`
	Latitude  sql.NullFloat64 `db:"latitude"`
	Longitude sql.NullFloat64 `db:"longitude"`
	Street    sql.NullString  `db:"address_street"`
	Street2   sql.NullString  `db:"address_street2"`
	City      sql.NullString  `db:"address_city"`
	State     sql.NullString  `db:"address_state"`
	Zip       sql.NullString  `db:"address_zip"`
	Country   sql.NullString  `db:"address_country"`
}

type pgEventTypeRow struct {
	EventID int64  `db:"event_id"`
	Name    string `db:"name"`
}

func (p *PostgresProvider) FetchWorkoutBatch(ctx context.Context, q BatchQuery) ([]entities.WorkoutRow, error) {
	conn, err := p.getConn()
	if err != nil {
		return nil, err
	}

	query, args := pageQuery(constants.PGEventPage, q)
	var events []pgEventRow
	if err := p.selectNamed(ctx, conn, &events, query, args); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	eventIDs := make([]int64, 0, len(events))
	orgIDs := make([]int64, 0, len(events))
	locationIDs := make([]int64, 0, len(events))
	seenOrg := make(map[int64]struct{})
	seenLocation := make(map[int64]struct{})
	for _, e := range events {
		eventIDs = append(eventIDs, e.ID)
		if _, ok := seenOrg[e.OrgID]; !ok {
			seenOrg[e.OrgID] = struct{}{}
			orgIDs = append(orgIDs, e.OrgID)
		}
		if e.LocationID.Valid {
			if _, ok := seenLocation[e.LocationID.Int64]; !ok {
				seenLocation[e.LocationID.Int64] = struct{}{}
				locationIDs = append(locationIDs, e.LocationID.Int64)
			}
		}
	}

	var orgs []pgOrgRow
	if err := p.selectIn(ctx, conn, &orgs, constants.PGOrgsWithParent, orgIDs); err != nil {
		return nil, err
	}
	orgByID := make(map[int64]pgOrgRow, len(orgs))
	for _, o := range orgs {
		orgByID[o.ID] = o
	}

	locationByID := make(map[int64]pgLocationRow)
	if len(locationIDs) > 0 {
		var locations []pgLocationRow
		if err := p.selectIn(ctx, conn, &locations, constants.PGLocationsByID, locationIDs); err != nil {
			return nil, err
		}
		for _, l := range locations {
			locationByID[l.ID] = l
		}
	}

	var types []pgEventTypeRow
	if err := p.selectIn(ctx, conn, &types, constants.PGEventTypesByEvent, eventIDs); err != nil {
		return nil, err
	}
	typesByEvent := make(map[int64][]string)
	for _, t := range types {
		typesByEvent[t.EventID] = append(typesByEvent[t.EventID], t.Name)
	}

	rows := make([]entities.WorkoutRow, 0, len(events))
	for _, e := range events {
		row := entities.WorkoutRow{
			ID:         e.ID,
			AOID:       e.OrgID,
			LocationID: sqlInt64(e.LocationID),
			Name:       e.Name,
			Notes:      sqlString(e.Notes),
			StartTime:  sqlString(e.StartTime),
			EndTime:    sqlString(e.EndTime),
			DayOfWeek:  sqlString(e.DayOfWeek),
			Updated:    e.Updated.UTC(),
			EventTypes: typesByEvent[e.ID],
		}

		if org, ok := orgByID[e.OrgID]; ok {
			row.AOOrgType = sqlString(org.OrgType)
			row.AOIsActive = sqlBool(org.IsActive)
			row.RegionID = sqlInt64(org.ParentID)
			row.RegionOrgType = sqlString(org.ParentOrgType)
			row.RegionIsActive = sqlBool(org.ParentIsActive)
		}

		if e.LocationID.Valid {
			if loc, ok := locationByID[e.LocationID.Int64]; ok {
				row.Latitude = sqlFloat64(loc.Latitude)
				row.Longitude = sqlFloat64(loc.Longitude)
				row.Street = sqlString(loc.Street)
				row.Street2 = sqlString(loc.Street2)
				row.City = sqlString(loc.City)
				row.State = sqlString(loc.State)
				row.Zip = sqlString(loc.Zip)
				row.Country = sqlString(loc.Country)
			}
		}

		rows = append(rows, row)
	}
	return rows, nil
}

func sqlString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func sqlInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func sqlFloat64(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func sqlBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}
