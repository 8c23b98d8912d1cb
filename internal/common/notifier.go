package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"f3-nation/regionsync/internal/config"
	"f3-nation/regionsync/internal/constants"
	"f3-nation/regionsync/internal/logging"
	"f3-nation/regionsync/internal/models/dtos"
)

// SlackNotifier posts run outcomes to a channel with chat.postMessage.
// Without a token or channel every Notify is a silent no-op.
type SlackNotifier struct {
	BaseURL   string
	Token     string
	ChannelID string
	Client    *http.Client
}

func NewSlackNotifier(cfg config.SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		BaseURL:   strings.TrimRight(cfg.APIURL, "/"),
		Token:     cfg.BotToken,
		ChannelID: cfg.ChannelID,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether credentials are configured
func (s *SlackNotifier) Enabled() bool {
	return s != nil && s.Token != "" && s.ChannelID != ""
}

type slackMessage struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type slackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Notify sends message. Slack answers 200 with ok=false for most failures,
// so the body decides success.
func (s *SlackNotifier) Notify(ctx context.Context, message string) error {
	if !s.Enabled() {
		logging.Debug("Slack credentials not configured, skipping notification")
		return nil
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(slackMessage{Channel: s.ChannelID, Text: message}); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/chat.postMessage", buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+s.Token)

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}

	var result slackResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode slack response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("slack notification failed: %s", result.Error)
	}
	return nil
}

// FormatSuccessMessage renders the success line followed by the run counts
func FormatSuccessMessage(completedAt string, s *dtos.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", constants.NotifySuccessPrefix, completedAt)
	if s == nil {
		return b.String()
	}

	fmt.Fprintf(&b, "\n• Duration: %.1fs", s.DurationSeconds)
	fmt.Fprintf(&b, "\n• Regions: %d seeded, %d fresh, %d pruned, %d enriched",
		s.RegionsSeeded, s.RegionsSkippedFresh, s.RegionsPruned, s.RegionsEnriched)
	fmt.Fprintf(&b, "\n• Workouts: %d seeded, %d skipped, %d pruned in %d batches",
		s.WorkoutsSeeded, s.WorkoutsSkipped, s.WorkoutsPruned, s.WorkoutBatches)

	if line := nameLine("Pruned regions", s.PrunedRegionNames, s.PrunedRegionNamesMore); line != "" {
		b.WriteString("\n• " + line)
	}
	if line := nameLine("Pruned workouts", s.PrunedWorkoutNames, s.PrunedWorkoutNamesMore); line != "" {
		b.WriteString("\n• " + line)
	}
	return b.String()
}

// FormatFailureMessage renders the failure line
func FormatFailureMessage(err error) string {
	return fmt.Sprintf("%s %v", constants.NotifyFailurePrefix, err)
}

func nameLine(label string, names []string, more int) string {
	if len(names) == 0 {
		return ""
	}
	line := fmt.Sprintf("%s: %s", label, strings.Join(names, ", "))
	if more > 0 {
		line += fmt.Sprintf(" and %d more", more)
	}
	return line
}

// CapNames keeps the first limit names and counts the rest
func CapNames(names []string, limit int) ([]string, int) {
	if len(names) <= limit {
		return names, 0
	}
	return names[:limit], len(names) - limit
}
