// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package statusapi is a read-only HTTP surface over persisted run
// reports, adapted from the teacher's pkg/server graceful-shutdown
// pattern. It is never started automatically — a long-running backup or
// restore invocation may opt into it with --status-addr.
package statusapi

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/northvault/zbackup/pkg/errors"
)

// Report is the persisted, JSON-serializable summary of one backup,
// restore, or verify run.
type Report struct {
	RunID      string            `json:"runId"`
	Kind       string            `json:"kind"` // "backup", "restore", or "verify"
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Succeeded  []string          `json:"succeeded"`
	Failed     map[string]string `json:"failed"`
}

// SaveReport writes r as "{dir}/{runId}.json".
func SaveReport(dir string, r *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.CommandExecution)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CommandExecution)
	}
	if err := os.WriteFile(filepath.Join(dir, r.RunID+".json"), data, 0o644); err != nil {
		return errors.Wrap(err, errors.CommandExecution)
	}
	return nil
}

// ListReports returns every persisted report under dir, most recent first.
func ListReports(dir string) ([]*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CommandExecution)
	}

	var reports []*Report
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		var r Report
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		reports = append(reports, &r)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})
	return reports, nil
}

// LoadReport reads a single persisted report by run ID.
func LoadReport(dir, runID string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(dir, runID+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.BackupPlanResolveError, "no report with id "+runID)
		}
		return nil, errors.Wrap(err, errors.CommandExecution)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, errors.CommandExecution)
	}
	return &r, nil
}
