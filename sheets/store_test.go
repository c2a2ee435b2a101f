package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type fakeSheet struct {
	mu       sync.Mutex
	values   [][]interface{}
	appended []map[string]interface{}
	queries  []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		body, _ := io.ReadAll(r.Body)
		var vr map[string]interface{}
		_ = json.Unmarshal(body, &vr)
		f.appended = append(f.appended, vr)
		f.queries = append(f.queries, r.URL.RawQuery)
		for _, row := range vr["values"].([]interface{}) {
			f.values = append(f.values, row.([]interface{}))
		}
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/values/"):
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"range": "Sheet1!A1:F", "values": f.values})
	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func newTestStore(t *testing.T, fake http.Handler) *Store {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := New(context.Background(), srv.Client(), "sheet-1", "A:F", option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return store
}

func TestStoreAppendAndRows(t *testing.T) {
	fake := &fakeSheet{}
	store := newTestStore(t, fake)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, []string{"2024-01-01", "alice", "y", "t", "b", "10:00:00"}))

	rows, err := store.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2024-01-01", "alice", "y", "t", "b", "10:00:00"}}, rows)
	require.Len(t, fake.queries, 1)
	assert.Contains(t, fake.queries[0], "valueInputOption=RAW")
}

func TestStoreRowsError(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))

	_, err := store.Rows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rows: failed to read")
}

func TestEnsureHeader(t *testing.T) {
	ctx := context.Background()

	empty := NewMemory()
	wrote, err := EnsureHeader(ctx, empty)
	require.NoError(t, err)
	assert.True(t, wrote)

	rows, _ := empty.Rows(ctx)
	assert.Equal(t, [][]string{{"Date", "Username", "Yesterday", "Today", "Blockers", "Time"}}, rows)

	wrote, err = EnsureHeader(ctx, empty)
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Equal(t, 1, empty.Len())
}
