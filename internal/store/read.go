package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ReadRecording retrieves the recording for key and method.
// Returns ErrNotRecorded if there is none.
func (s *Store) ReadRecording(ctx context.Context, key string, method Method) (Recording, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.session_id, r.query_key, r.method, r.query, r.parameters, r.continuation,
			(SELECT COUNT(*) FROM pages p WHERE p.recording_id = r.id)
		FROM recordings r
		WHERE r.query_key = ? AND r.method = ?
	`, key, string(method))

	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Recording{}, fmt.Errorf("%w: %s (%s)", ErrNotRecorded, key, method)
	}
	return rec, err
}

// ReadPages returns the pages recorded for key and method in page order.
// Returns ErrNotRecorded if the query was never recorded, and an empty slice
// (not nil) if it was recorded but produced no pages yet.
func (s *Store) ReadPages(ctx context.Context, key string, method Method) ([]Page, error) {
	rec, err := s.ReadRecording(ctx, key, method)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT page_index, resources, continuation_token, has_more, page_hash
		FROM pages
		WHERE recording_id = ?
		ORDER BY page_index ASC
	`, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	pages := []Page{}
	for rows.Next() {
		var (
			p         Page
			resources string
		)
		if err := rows.Scan(&p.Index, &resources, &p.Response.ContinuationToken, &p.Response.HasMoreResults, &p.Hash); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		p.Response.Resources, err = unmarshalResources(resources)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", p.Index, err)
		}
		pages = append(pages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return pages, nil
}

// ListRecordings returns recordings in insertion order with their page
// counts. An empty sessionID lists every session.
//
// Returns empty slice (not nil) if nothing was recorded.
func (s *Store) ListRecordings(ctx context.Context, sessionID string) ([]Recording, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.session_id, r.query_key, r.method, r.query, r.parameters, r.continuation,
			(SELECT COUNT(*) FROM pages p WHERE p.recording_id = r.id)
		FROM recordings r
		WHERE ? = '' OR r.session_id = ?
		ORDER BY r.id ASC
	`, sessionID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query recordings: %w", err)
	}
	defer rows.Close()

	recordings := []Recording{}
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		recordings = append(recordings, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recordings: %w", err)
	}
	return recordings, nil
}

// ListSessions returns sessions ordered by seq.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, seq FROM sessions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Label, &sess.Seq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// scanner is the Scan method shared by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecording(row scanner) (Recording, error) {
	var (
		rec    Recording
		method string
	)
	err := row.Scan(
		&rec.ID,
		&rec.SessionID,
		&rec.Key,
		&method,
		&rec.Query,
		&rec.Parameters,
		&rec.Continuation,
		&rec.PageCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Recording{}, err
	}
	if err != nil {
		return Recording{}, fmt.Errorf("scan recording: %w", err)
	}
	rec.Method = Method(method)
	return rec, nil
}
