package store

import (
	"context"
	"fmt"

	"github.com/roach88/docquery/internal/canonical"
	"github.com/roach88/docquery/pkg/querybuilder"
)

// StartSession registers a recording session and assigns it the next seq.
// Starting an existing session again is a no-op that returns it unchanged.
func (s *Store) StartSession(ctx context.Context, id, label string) (Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, fmt.Errorf("start session: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, label, seq)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM sessions))
		ON CONFLICT(id) DO NOTHING
	`, id, label)
	if err != nil {
		return Session{}, fmt.Errorf("start session: insert: %w", err)
	}

	var sess Session
	err = tx.QueryRowContext(ctx, `
		SELECT id, label, seq FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Label, &sess.Seq)
	if err != nil {
		return Session{}, fmt.Errorf("start session: select: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Session{}, fmt.Errorf("start session: commit: %w", err)
	}
	return sess, nil
}

// BeginRecording creates the recording for rec.Key and rec.Method, or takes
// over an existing one: the session, query text and parameters are replaced
// and its previous pages are dropped. Returns the recording id.
//
// Note: The session referenced by rec.SessionID must exist (foreign key constraint).
func (s *Store) BeginRecording(ctx context.Context, rec Recording) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin recording: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recordings
		(session_id, query_key, method, query, parameters, continuation)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(query_key, method) DO UPDATE SET
			session_id = excluded.session_id,
			query = excluded.query,
			parameters = excluded.parameters,
			continuation = excluded.continuation
	`,
		rec.SessionID,
		rec.Key,
		string(rec.Method),
		rec.Query,
		rec.Parameters,
		rec.Continuation,
	)
	if err != nil {
		return 0, fmt.Errorf("begin recording: upsert: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM recordings WHERE query_key = ? AND method = ?
	`, rec.Key, string(rec.Method)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("begin recording: select id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE recording_id = ?`, id); err != nil {
		return 0, fmt.Errorf("begin recording: clear pages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("begin recording: commit: %w", err)
	}
	return id, nil
}

// WritePage stores one response of a recording at index. Writing the same
// index twice replaces the page.
func (s *Store) WritePage(ctx context.Context, recordingID int64, index int, page querybuilder.FeedResponse) error {
	resources, err := marshalResources(page.Resources)
	if err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	hash, err := canonical.PageHash(page)
	if err != nil {
		return fmt.Errorf("write page: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pages
		(recording_id, page_index, resources, continuation_token, has_more, page_hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(recording_id, page_index) DO UPDATE SET
			resources = excluded.resources,
			continuation_token = excluded.continuation_token,
			has_more = excluded.has_more,
			page_hash = excluded.page_hash
	`,
		recordingID,
		index,
		resources,
		page.ContinuationToken,
		page.HasMoreResults,
		hash,
	)
	if err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}
