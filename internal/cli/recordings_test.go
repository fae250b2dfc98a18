package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docquery/internal/store"
)

func listRecordings(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRecordingsCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestRecordings_Empty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "recordings.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := listRecordings(t, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No recordings found")
}

func TestRecordings_ListsRecordedQueries(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "recordings.db")
	_, err := runWith(t, liveAdults(t), "text", "testdata/adults.yaml", "--db", dbPath, "--record", "--label", "smoke")
	require.NoError(t, err)

	out, err := listRecordings(t, "json", "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Data RecordingsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	require.Len(t, resp.Data.Sessions, 1)
	assert.Equal(t, "smoke", resp.Data.Sessions[0].Label)

	require.Len(t, resp.Data.Recordings, 2)
	items, count := resp.Data.Recordings[0], resp.Data.Recordings[1]
	assert.Equal(t, "all", items.Method)
	assert.Equal(t, 1, items.Pages)
	assert.Contains(t, items.Query, "ORDER BY")
	assert.Equal(t, `[{"name":"@p0","value":18}]`, items.Parameters)
	assert.Contains(t, count.Query, "VALUE COUNT(1)")
	assert.NotEqual(t, items.Key, count.Key)

	text, err := listRecordings(t, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, text, "(smoke)")
	assert.Contains(t, text, "SELECT VALUE COUNT(1) FROM c WHERE c.age > @p0")
}

func TestRecordings_SessionFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "recordings.db")
	_, err := runWith(t, liveAdults(t), "text", "testdata/adults.yaml", "--db", dbPath, "--record")
	require.NoError(t, err)

	out, err := listRecordings(t, "json", "--db", dbPath, "--session", "no-such-session")
	require.NoError(t, err)

	var resp struct {
		Data RecordingsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Empty(t, resp.Data.Sessions)
	assert.Empty(t, resp.Data.Recordings)
}

func TestRecordings_ContextFromCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "recordings.db")
	cmd := NewRecordingsCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, cmd.ExecuteContext(ctx))
}
