package history

import (
	"context"
	"fmt"

	"github.com/roach88/ashpad/internal/session"
)

// RecordRun appends a run. A run already recorded for the same session and
// sequence number is ignored.
func (s *Store) RecordRun(ctx context.Context, run session.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(session_id, seq, target, field, active_file, workspace_digest, result_digest,
		 status, stage, status_line, artifact_len, single_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		run.Session,
		run.Seq,
		run.Target,
		run.Field,
		run.ActiveFile,
		run.WorkspaceDigest,
		run.ResultDigest,
		string(run.Status),
		string(run.Stage),
		run.StatusLine,
		run.ArtifactLen,
		run.SingleFile,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

var _ session.Recorder = (*Store)(nil)
