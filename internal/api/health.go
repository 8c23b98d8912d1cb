package api

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"f3-nation/regionsync/internal/models/entities"
)

// HealthCheckHandler handles GET /healthCheck. It pings the serving store
// and reports when the daily ingest last completed.
func HealthCheckHandler(db *gorm.DB, lastIngested func(ctx context.Context) (*time.Time, error), upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]entities.ServiceStatus)

		dbStatus := "ok"
		dbDetails := "Serving store connected"
		if sqlDB, err := db.DB(); err != nil {
			dbStatus = "down"
			dbDetails = err.Error()
		} else if err := sqlDB.PingContext(r.Context()); err != nil {
			dbStatus = "down"
			dbDetails = err.Error()
		}
		services["serving_store"] = entities.ServiceStatus{
			Status:  dbStatus,
			Details: dbDetails,
		}

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   "ok",
			UpSince:  upSince.UTC(),
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}
		for _, svc := range services {
			if svc.Status != "ok" {
				resp.Status = "down"
				break
			}
		}

		if dbStatus == "ok" {
			if last, err := lastIngested(r.Context()); err == nil {
				resp.LastIngestedAt = last
			}
		}

		code := http.StatusOK
		if resp.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		respondWithJSON(w, code, resp)
	}
}
