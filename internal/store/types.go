package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/docquery/pkg/querybuilder"
)

// Method is the iterator call a recording captured.
type Method string

const (
	// MethodNext is a single FetchNext page.
	MethodNext Method = "next"
	// MethodAll is the merged response of FetchAll.
	MethodAll Method = "all"
)

// ErrNotRecorded is returned when no recording exists for a query key and
// method. It wraps sql.ErrNoRows.
var ErrNotRecorded = fmt.Errorf("query not recorded: %w", sql.ErrNoRows)

// Session groups the recordings made by one recorder.
type Session struct {
	ID    string
	Label string
	Seq   int64
}

// Recording is one rendered query executed with one fetch method.
type Recording struct {
	ID        int64
	SessionID string
	// Key is canonical.QueryKey of the query spec and its options.
	Key    string
	Method Method
	Query  string
	// Parameters is the canonical JSON of the parameter list.
	Parameters   string
	Continuation string
	// PageCount is filled by ListRecordings.
	PageCount int
}

// Page is one stored container response.
type Page struct {
	Index    int
	Response querybuilder.FeedResponse
	// Hash is canonical.PageHash of Response at write time.
	Hash string
}
