// ABOUTME: Export and import of tribe data across any Repository.
// ABOUTME: JSON is the lossless round-trip format; YAML is a readable summary.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/tribe/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is bumped when the export layout changes.
const ExportVersion = "1.0"

// ExportData represents the full export format for tribe data.
type ExportData struct {
	Version        string                    `json:"version" yaml:"version"`
	ExportedAt     time.Time                 `json:"exported_at" yaml:"exported_at"`
	Tool           string                    `json:"tool" yaml:"tool"`
	CatalogVersion int                       `json:"catalog_version" yaml:"catalog_version"`
	Logs           []*models.WorkoutLog      `json:"logs" yaml:"logs"`
	States         []StateRecord             `json:"states" yaml:"states"`
	XPLogs         []*models.XPLogEntry      `json:"xp_logs" yaml:"xp_logs"`
	PointLogs      []*models.PointLogEntry   `json:"point_logs" yaml:"point_logs"`
	Gifts          []*models.GiftTransaction `json:"gifts" yaml:"gifts"`
}

// GetAllData retrieves everything in repo for export.
func GetAllData(ctx context.Context, repo Repository) (*ExportData, error) {
	logs, err := repo.ListLogs(ctx, LogFilter{})
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	states, err := repo.ListStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	xpLogs, err := repo.ListXPLogs(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("list xp logs: %w", err)
	}
	pointLogs, err := repo.ListPointLogs(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("list point logs: %w", err)
	}
	gifts, err := repo.ListGifts(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("list gifts: %w", err)
	}

	return &ExportData{
		Version:        ExportVersion,
		ExportedAt:     time.Now(),
		Tool:           "tribe",
		CatalogVersion: models.CatalogVersion,
		Logs:           logs,
		States:         states,
		XPLogs:         xpLogs,
		PointLogs:      pointLogs,
		Gifts:          gifts,
	}, nil
}

// ImportData writes an export into repo. The destination should be empty.
func ImportData(ctx context.Context, repo Repository, data *ExportData) error {
	for _, l := range data.Logs {
		if err := repo.CreateLog(ctx, l); err != nil {
			return fmt.Errorf("import log %s: %w", l.ID, err)
		}
	}
	for _, s := range data.States {
		if s.State == nil {
			continue
		}
		if err := repo.SaveGamificationState(ctx, s.Profile, s.State); err != nil {
			return fmt.Errorf("import state for %s: %w", s.Profile.DisplayName, err)
		}
	}
	for _, e := range data.XPLogs {
		if err := repo.AppendXPLog(ctx, e); err != nil {
			return fmt.Errorf("import xp log %s: %w", e.ID, err)
		}
	}
	for _, e := range data.PointLogs {
		if err := repo.AppendPointLog(ctx, e); err != nil {
			return fmt.Errorf("import point log %s: %w", e.ID, err)
		}
	}
	for _, g := range data.Gifts {
		if err := repo.RecordGift(ctx, g); err != nil {
			return fmt.Errorf("import gift %s: %w", g.ID, err)
		}
	}
	return nil
}

// ExportJSON exports all data as indented JSON.
func ExportJSON(ctx context.Context, repo Repository) ([]byte, error) {
	data, err := GetAllData(ctx, repo)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(ctx context.Context, repo Repository, raw []byte) error {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return ImportData(ctx, repo, &data)
}

// ExportYAML exports a readable summary: logs grouped by user and one
// standing block per user. Ledger rows are omitted.
func ExportYAML(ctx context.Context, repo Repository) ([]byte, error) {
	data, err := GetAllData(ctx, repo)
	if err != nil {
		return nil, err
	}

	out := yamlExport{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Logs:       make(map[string][]yamlLog),
		Users:      make(map[string]yamlStanding),
	}

	for _, l := range data.Logs {
		yl := yamlLog{
			ID:       l.ID.String()[:8],
			Kind:     l.Kind.Label(),
			Date:     l.Date.Format(time.RFC3339),
			Duration: l.DurationMinutes,
			Activity: l.CustomActivity,
			Tribe:    l.TribeID,
		}
		if l.Calories != nil {
			yl.Calories = *l.Calories
		}
		if l.Vibes != nil {
			yl.Vibes = *l.Vibes
		}
		for _, e := range l.Exercises {
			yl.Exercises = append(yl.Exercises, e.Name)
		}
		out.Logs[l.User] = append(out.Logs[l.User], yl)
	}

	for _, s := range data.States {
		if s.State == nil {
			continue
		}
		st := s.State.Clone()
		st.Normalize()
		ys := yamlStanding{
			Tribe:  s.Profile.TribeID,
			Points: st.Points,
			XP:     st.XP(),
			Badges: st.Badges,
			Theme:  st.ActiveTheme,
			Items:  st.Inventory,
		}
		if st.ActiveCommitment != nil {
			ys.Commitment = st.ActiveCommitment.Format(time.RFC3339)
		}
		out.Users[s.Profile.DisplayName] = ys
	}

	return yaml.Marshal(out)
}

type yamlExport struct {
	Version    string                  `yaml:"version"`
	ExportedAt string                  `yaml:"exported_at"`
	Tool       string                  `yaml:"tool"`
	Logs       map[string][]yamlLog    `yaml:"logs"`
	Users      map[string]yamlStanding `yaml:"users"`
}

type yamlLog struct {
	ID        string   `yaml:"id"`
	Kind      string   `yaml:"kind"`
	Date      string   `yaml:"date"`
	Duration  int      `yaml:"duration_minutes,omitempty"`
	Activity  string   `yaml:"activity,omitempty"`
	Tribe     string   `yaml:"tribe,omitempty"`
	Calories  int      `yaml:"calories,omitempty"`
	Vibes     int      `yaml:"vibes,omitempty"`
	Exercises []string `yaml:"exercises,omitempty"`
}

type yamlStanding struct {
	Tribe      string         `yaml:"tribe,omitempty"`
	Points     int            `yaml:"points"`
	XP         int            `yaml:"xp"`
	Badges     []string       `yaml:"badges"`
	Theme      string         `yaml:"theme"`
	Items      map[string]int `yaml:"items,omitempty"`
	Commitment string         `yaml:"commitment,omitempty"`
}
