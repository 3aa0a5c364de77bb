// ABOUTME: Data migration between tribe storage backends.
// ABOUTME: Copies logs, states, ledgers, and gifts from source to destination.

package storage

import (
	"context"
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Logs      int
	States    int
	XPLogs    int
	PointLogs int
	Gifts     int
}

// MigrateData copies all data from src to dst storage. The destination should
// be empty before calling this function; ledger rows keep their IDs.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	data, err := GetAllData(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if err := ImportData(ctx, dst, data); err != nil {
		return nil, fmt.Errorf("write destination: %w", err)
	}
	return &MigrateSummary{
		Logs:      len(data.Logs),
		States:    len(data.States),
		XPLogs:    len(data.XPLogs),
		PointLogs: len(data.PointLogs),
		Gifts:     len(data.Gifts),
	}, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
