package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"f3-nation/regionsync/internal/models/dtos/requests"
)

func main() {
	app := cli.App{
		Name:  "trigger",
		Usage: "ask a running region sync server to ingest",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "url",
			Usage:   "base URL of the region sync server",
			EnvVars: []string{"INGEST_URL"},
			Value:   "http://localhost:8080",
		},
		&cli.StringFlag{
			Name:     "secret",
			Usage:    "shared cron secret",
			EnvVars:  []string{"CRON_SECRET"},
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "rewrite rows even if they are fresh",
		},
		&cli.BoolFlag{
			Name:  "skip-guard",
			Usage: "run even if the daily ingest already completed",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "how long to wait for the run to finish",
			Value: 6 * time.Minute,
		},
	}

	app.Action = trigger

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func trigger(cctx *cli.Context) error {
	body, err := json.Marshal(requests.IngestRequest{
		Force:     cctx.Bool("force"),
		SkipGuard: cctx.Bool("skip-guard"),
	})
	if err != nil {
		return err
	}

	endpoint := strings.TrimRight(cctx.String("url"), "/") + "/api/ingest"
	req, err := http.NewRequestWithContext(cctx.Context, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cctx.String("secret"))

	client := &http.Client{Timeout: cctx.Duration("timeout")}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("trigger request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	fmt.Println(string(respBody))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("ingest returned status %d", resp.StatusCode)
	}
	return nil
}
