package constants

// BigQuery warehouse queries. Cursor and floor parameters are bound as typed
// NULLs when absent so the IS NULL guards compare against a known type.
const (
	BQActiveRegionIDs = `
	SELECT CAST(id AS STRING) AS id
	FROM orgs
	WHERE org_type = 'region' AND is_active = TRUE
	`

	BQActiveEventIDs = `
	SELECT CAST(e.id AS STRING) AS id
	FROM events e
	JOIN orgs ao ON ao.id = e.org_id AND ao.org_type = 'ao' AND ao.is_active = TRUE
	JOIN orgs region ON region.id = ao.parent_id AND region.org_type = 'region' AND region.is_active = TRUE
	WHERE e.is_active = TRUE
	`

	BQRegionBatch = `
	SELECT
		o.id,
		o.name,
		o.description,
		o.website,
		o.logo_url,
		o.email,
		o.facebook,
		o.twitter,
		o.instagram,
		COALESCE(o.updated, TIMESTAMP '1970-01-01 00:00:00+00') AS updated
	FROM orgs o
	WHERE o.org_type = 'region'
		AND o.is_active = TRUE
		AND (
			@updatedAfter IS NULL
			OR COALESCE(o.updated, TIMESTAMP '1970-01-01 00:00:00+00') >= @updatedAfter
		)
		AND (
			@cursorUpdated IS NULL
			OR COALESCE(o.updated, TIMESTAMP '1970-01-01 00:00:00+00') > @cursorUpdated
			OR (
				COALESCE(o.updated, TIMESTAMP '1970-01-01 00:00:00+00') = @cursorUpdated
				AND @cursorId IS NOT NULL
				AND o.id > @cursorId
			)
		)
	ORDER BY COALESCE(o.updated, TIMESTAMP '1970-01-01 00:00:00+00') ASC, o.id ASC
	LIMIT @batchSize
	`

	BQWorkoutBatch = `
	SELECT
		e.id,
		e.org_id AS ao_id,
		e.location_id,
		e.name,
		e.description AS notes,
		e.start_time,
		e.end_time,
		CAST(e.day_of_week AS STRING) AS day_of_week,
		COALESCE(e.updated, TIMESTAMP '1970-01-01 00:00:00+00') AS updated,
		ARRAY_AGG(DISTINCT et.name IGNORE NULLS ORDER BY et.name) AS event_types,
		CAST(ao.org_type AS STRING) AS ao_org_type,
		ao.is_active AS ao_is_active,
		ao.parent_id AS region_id,
		CAST(region.org_type AS STRING) AS region_org_type,
		region.is_active AS region_is_active,
		l.latitude,
		l.longitude,
		l.address_street AS street,
		l.address_street2 AS street2,
		l.address_city AS city,
		l.address_state AS state,
		l.address_zip AS zip,
		l.address_country AS country
	FROM events e
	LEFT JOIN orgs ao ON ao.id = e.org_id
	LEFT JOIN orgs region ON region.id = ao.parent_id
	LEFT JOIN locations l ON l.id = e.location_id
	LEFT JOIN events_x_event_types ex ON ex.event_id = e.id
	LEFT JOIN event_types et ON et.id = ex.event_type_id
	WHERE e.is_active = TRUE
		AND (
			@updatedAfter IS NULL
			OR COALESCE(e.updated, TIMESTAMP '1970-01-01 00:00:00+00') >= @updatedAfter
		)
		AND (
			@cursorUpdated IS NULL
			OR COALESCE(e.updated, TIMESTAMP '1970-01-01 00:00:00+00') > @cursorUpdated
			OR (
				COALESCE(e.updated, TIMESTAMP '1970-01-01 00:00:00+00') = @cursorUpdated
				AND @cursorId IS NOT NULL
				AND e.id > @cursorId
			)
		)
	GROUP BY
		e.id, e.org_id, e.location_id, e.name, e.description, e.start_time,
		e.end_time, e.day_of_week, e.updated, ao.org_type, ao.is_active,
		ao.parent_id, region.org_type, region.is_active, l.latitude,
		l.longitude, l.address_street, l.address_street2, l.address_city,
		l.address_state, l.address_zip, l.address_country
	ORDER BY COALESCE(e.updated, TIMESTAMP '1970-01-01 00:00:00+00') ASC, e.id ASC
	LIMIT @batchSize
	`
)

// Postgres warehouse queries (multi-query fan-out). Cursor predicates are
// appended only when a cursor or floor is present; IN lists are expanded
// with sqlx.In and rebound per driver.
const (
	PGActiveRegionIDs = `
	SELECT id FROM orgs WHERE org_type = 'region' AND is_active = TRUE
	`

	PGActiveEventIDs = `
	SELECT e.id
	FROM events e
	JOIN orgs ao ON ao.id = e.org_id AND ao.org_type = 'ao' AND ao.is_active = TRUE
	JOIN orgs region ON region.id = ao.parent_id AND region.org_type = 'region' AND region.is_active = TRUE
	WHERE e.is_active = TRUE
	`

	PGRegionPage = `
	SELECT id, name, description, website, logo_url, email, facebook, twitter, instagram, updated
	FROM orgs
	WHERE org_type = 'region' AND is_active = TRUE`

	PGEventPage = `
	SELECT id, org_id, location_id, name, description, start_time, end_time, day_of_week, updated
	FROM events
	WHERE is_active = TRUE`

	PGUpdatedAfterClause = `
	AND updated >= :updated_after`

	PGCursorClause = `
	AND (updated > :cursor_updated OR (updated = :cursor_updated AND id > :cursor_id))`

	PGPageOrder = `
	ORDER BY updated ASC, id ASC
	LIMIT :batch_size`

	PGOrgsWithParent = `
	SELECT
		ao.id,
		ao.org_type,
		ao.is_active,
		ao.parent_id,
		region.org_type AS parent_org_type,
		region.is_active AS parent_is_active
	FROM orgs ao
	LEFT JOIN orgs region ON region.id = ao.parent_id
	WHERE ao.id IN (?)`

	PGLocationsByID = `
	SELECT
		id, latitude, longitude, address_street, address_street2,
		address_city, address_state, address_zip, address_country
	FROM locations
	WHERE id IN (?)`

	PGEventTypesByEvent = `
	SELECT ex.event_id, et.name
	FROM events_x_event_types ex
	JOIN event_types et ON et.id = ex.event_type_id
	WHERE ex.event_id IN (?)
	ORDER BY ex.event_id ASC, et.name ASC`
)
