package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"f3-nation/regionsync/internal/api"
	"f3-nation/regionsync/internal/config"
	"f3-nation/regionsync/internal/db"
	"f3-nation/regionsync/internal/jobs"
	"f3-nation/regionsync/internal/logging"
	"f3-nation/regionsync/internal/metrics"
)

func main() {
	app := cli.App{
		Name:  "ingest",
		Usage: "sync F3 regions and workouts from the data warehouse",
	}

	forceFlag := &cli.BoolFlag{
		Name:  "force",
		Usage: "rewrite rows even if they were ingested within the fresh window",
	}

	app.Commands = []*cli.Command{
		{
			Name:  "run",
			Usage: "prune, seed regions, seed workouts and enrich",
			Flags: []cli.Flag{
				forceFlag,
				&cli.BoolFlag{
					Name:  "skip-guard",
					Usage: "run even if the daily ingest already completed",
				},
			},
			Action: withDeps(func(cctx *cli.Context, deps *api.Dependencies) error {
				result, err := deps.Services.Orchestrator.Run(cctx.Context, jobs.RunOptions{
					Force:     cctx.Bool("force"),
					SkipGuard: cctx.Bool("skip-guard"),
				})
				printJSON(result)
				return err
			}),
		},
		{
			Name:  "prune",
			Usage: "remove regions and workouts no longer active in the warehouse",
			Action: withDeps(func(cctx *cli.Context, deps *api.Dependencies) error {
				regions, workouts, err := deps.Services.Orchestrator.RunPrune(cctx.Context)
				if err != nil {
					return err
				}
				logging.Info("Prune finished",
					"regions_removed", len(regions.Names),
					"workouts_cascaded", regions.WorkoutsCascaded,
					"workouts_removed", len(workouts.Removed),
				)
				return nil
			}),
		},
		{
			Name:  "seed-regions",
			Usage: "upsert active warehouse regions",
			Flags: []cli.Flag{forceFlag},
			Action: withDeps(func(cctx *cli.Context, deps *api.Dependencies) error {
				res, err := deps.Services.Orchestrator.RunRegionSeed(cctx.Context, cctx.Bool("force"))
				if err != nil {
					return err
				}
				logging.Info("Region seed finished", "seeded", res.Seeded, "skipped_fresh", res.SkippedFresh, "batches", res.Batches)
				return nil
			}),
		},
		{
			Name:  "seed-workouts",
			Usage: "upsert active warehouse events as workouts",
			Flags: []cli.Flag{forceFlag},
			Action: withDeps(func(cctx *cli.Context, deps *api.Dependencies) error {
				res, err := deps.Services.Orchestrator.RunWorkoutSeed(cctx.Context, cctx.Bool("force"))
				if err != nil {
					return err
				}
				logging.Info("Workout seed finished",
					"seeded", res.Seeded,
					"skipped", res.Skipped.Total(),
					"skip_reasons", res.Skipped.Strings(),
					"batches", res.Batches,
					"capped", res.Capped,
				)
				return nil
			}),
		},
		{
			Name:  "enrich",
			Usage: "derive region address, map center and zoom from workouts",
			Action: withDeps(func(cctx *cli.Context, deps *api.Dependencies) error {
				n, err := deps.Services.Orchestrator.RunEnrich(cctx.Context)
				if err != nil {
					return err
				}
				logging.Info("Enrichment finished", "regions", n)
				return nil
			}),
		},
		{
			Name:  "migrate",
			Usage: "create or update the serving store tables",
			Action: withDeps(func(cctx *cli.Context, deps *api.Dependencies) error {
				if err := db.Migrate(deps.ServingDB); err != nil {
					return err
				}
				logging.Info("Serving store migrated")
				return nil
			}),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withDeps loads configuration and opens connections before action runs.
// Invalid configuration fails here, before anything is touched.
func withDeps(action func(cctx *cli.Context, deps *api.Dependencies) error) cli.ActionFunc {
	return func(cctx *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := logging.Init(cfg.AppEnv); err != nil {
			return err
		}
		defer logging.Close()

		deps, err := api.InitDependencies(cfg, metrics.NewMetricsRegistry(prometheus.NewRegistry()))
		if err != nil {
			return err
		}
		defer deps.Close()

		return action(cctx, deps)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
