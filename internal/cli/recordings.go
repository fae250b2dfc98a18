package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docquery/internal/store"
)

// RecordingsOptions holds flags for the recordings command.
type RecordingsOptions struct {
	*RootOptions
	Database string
	Session  string
}

// RecordingSummary is one listed recording.
type RecordingSummary struct {
	ID           int64  `json:"id"`
	Session      string `json:"session"`
	Method       string `json:"method"`
	Pages        int    `json:"pages"`
	Key          string `json:"key"`
	Query        string `json:"query"`
	Parameters   string `json:"parameters"`
	Continuation string `json:"continuation,omitempty"`
}

// SessionSummary is one listed recording session.
type SessionSummary struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Seq   int64  `json:"seq"`
}

// RecordingsResult is the output of the recordings command.
type RecordingsResult struct {
	Sessions   []SessionSummary   `json:"sessions"`
	Recordings []RecordingSummary `json:"recordings"`
}

// NewRecordingsCommand creates the recordings command.
func NewRecordingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordingsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recordings",
		Short: "List recorded queries",
		Long: `List recording sessions and the queries recorded in them.

Examples:
  docquery recordings --db ./recordings.db
  docquery recordings --db ./recordings.db --session 0190f3c2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordings(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite recordings database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "only list recordings of this session")

	return cmd
}

func runRecordings(cmd *cobra.Command, opts *RecordingsOptions) error {
	ctx := cmd.Context()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}
	recordings, err := st.ListRecordings(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list recordings", err)
	}

	result := RecordingsResult{
		Sessions:   make([]SessionSummary, 0, len(sessions)),
		Recordings: make([]RecordingSummary, 0, len(recordings)),
	}
	for _, s := range sessions {
		if opts.Session != "" && s.ID != opts.Session {
			continue
		}
		result.Sessions = append(result.Sessions, SessionSummary{ID: s.ID, Label: s.Label, Seq: s.Seq})
	}
	for _, r := range recordings {
		result.Recordings = append(result.Recordings, RecordingSummary{
			ID:           r.ID,
			Session:      r.SessionID,
			Method:       string(r.Method),
			Pages:        r.PageCount,
			Key:          r.Key,
			Query:        r.Query,
			Parameters:   r.Parameters,
			Continuation: r.Continuation,
		})
	}

	f := opts.formatter(cmd)
	if f.Format == "json" {
		return f.Success(result)
	}
	return f.Success(formatRecordingsText(result))
}

func formatRecordingsText(result RecordingsResult) string {
	if len(result.Recordings) == 0 {
		return "No recordings found."
	}

	var sb strings.Builder
	for _, s := range result.Sessions {
		fmt.Fprintf(&sb, "session %d %s", s.Seq, s.ID)
		if s.Label != "" {
			fmt.Fprintf(&sb, " (%s)", s.Label)
		}
		sb.WriteString("\n")
	}
	for _, r := range result.Recordings {
		// Query text is collapsed onto one line.
		fmt.Fprintf(&sb, "\n#%d %s %d page(s) key=%s\n", r.ID, r.Method, r.Pages, shortKey(r.Key))
		fmt.Fprintf(&sb, "  %s\n", strings.Join(strings.Fields(r.Query), " "))
		fmt.Fprintf(&sb, "  parameters: %s", r.Parameters)
	}
	return sb.String()
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
