package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/ashpad/internal/session"
)

// Filter narrows a run listing. Zero values match everything.
type Filter struct {
	Session string
	Status  session.Status
	// Workspace matches runs over this workspace digest.
	Workspace string
	// Limit keeps only the most recent runs when positive.
	Limit int
}

// Runs lists recorded runs oldest first.
//
// Returns an empty slice, not nil, when nothing matches.
func (s *Store) Runs(ctx context.Context, f Filter) ([]session.Run, error) {
	var (
		where []string
		args  []any
	)
	if f.Session != "" {
		where = append(where, "session_id = ?")
		args = append(args, f.Session)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Workspace != "" {
		where = append(where, "workspace_digest = ?")
		args = append(args, f.Workspace)
	}

	query := `SELECT id, session_id, seq, target, field, active_file, workspace_digest, result_digest,
		status, stage, status_line, artifact_len, single_file FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	// Newest rows are selected first so LIMIT keeps the latest; flip back to
	// oldest first.
	query = "SELECT * FROM (" + query + ") ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []session.Run{}
	for rows.Next() {
		var (
			id     int64
			run    session.Run
			status string
			stage  string
		)
		if err := rows.Scan(&id, &run.Session, &run.Seq, &run.Target, &run.Field, &run.ActiveFile,
			&run.WorkspaceDigest, &run.ResultDigest, &status, &stage, &run.StatusLine, &run.ArtifactLen, &run.SingleFile); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = session.Status(status)
		run.Stage = session.Stage(stage)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// StageCount is the number of runs that ended at one stage.
type StageCount struct {
	Status session.Status `json:"status"`
	Stage  session.Stage  `json:"stage,omitempty"`
	Runs   int            `json:"runs"`
}

// Stats counts runs per outcome, successes first then failures by stage name.
func (s *Store) Stats(ctx context.Context) ([]StageCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, stage, COUNT(*)
		FROM runs
		GROUP BY status, stage
		ORDER BY status DESC, stage COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	out := []StageCount{}
	for rows.Next() {
		var (
			c             StageCount
			status, stage string
		)
		if err := rows.Scan(&status, &stage, &c.Runs); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		c.Status = session.Status(status)
		c.Stage = session.Stage(stage)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return out, nil
}
