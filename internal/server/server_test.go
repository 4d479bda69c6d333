package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/conneroisu/templgrid/internal/config"
	"github.com/conneroisu/templgrid/internal/editor"
	gerrors "github.com/conneroisu/templgrid/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecords(t *testing.T, path string, n int) {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "- id: %d\n  name: row %d\n  status: %t\n", i, i, i%2 == 0)
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func newTestServer(t *testing.T, rows int) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.yaml")
	writeRecords(t, path, rows)

	cfg := config.Default()
	cfg.Data.File = path
	cfg.Grid.RowsPerPage = 30
	cfg.Grid.Selection = true
	cfg.Grid.Columns = []config.ColumnConfig{
		{Name: "id", Value: "ID"},
		{Name: "name"},
		{Name: "status"},
	}
	cfg.Grid.Options = map[string]editor.Descriptor{
		"status": {Module: editor.KindToggle},
	}

	s, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewLoadsGrid(t *testing.T) {
	s := newTestServer(t, 100)

	assert.True(t, s.Grid().Loaded())
	assert.Equal(t, 4, s.Grid().NumberOfPages())
	assert.Equal(t, 1, s.Grid().Page())
}

func TestNewDerivesColumnsFromRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.yaml")
	writeRecords(t, path, 3)

	cfg := config.Default()
	cfg.Data.File = path

	s, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer s.Grid().Destroy()

	names := make([]string, 0)
	for _, col := range s.Grid().GetColumns() {
		names = append(names, col.Name())
	}
	assert.Equal(t, []string{"id", "name", "status"}, names)
}

func TestNewWithoutColumnsOrRecords(t *testing.T) {
	_, err := New(context.Background(), config.Default(), nil)
	assert.ErrorIs(t, err, gerrors.ErrEmptyHeader)
}

func TestNewMissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.Data.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestHandleIndex(t *testing.T) {
	s := newTestServer(t, 40)

	rec := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "<table")
	assert.Contains(t, body, `new WebSocket(`)
	assert.Contains(t, body, "grid-toggle")

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/nope").Code)
}

func TestHandleGrid(t *testing.T) {
	s := newTestServer(t, 40)

	rec := get(t, s.Handler(), "/grid")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<div"))
	assert.Contains(t, body, `data-index="29"`)
	assert.NotContains(t, body, `data-index="30"`)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, 40)

	rec := get(t, s.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, true, health["loaded"])
	assert.EqualValues(t, 2, health["pages"])
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, 5)
	s.config.Server.AllowedOrigins = []string{"http://app.example"}

	req := httptest.NewRequest(http.MethodOptions, "/grid", nil)
	req.Header.Set("Origin", "http://app.example")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/grid", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCheckOrigin(t *testing.T) {
	s := newTestServer(t, 5)
	s.config.Server.AllowedOrigins = []string{"https://app.example"}

	testCases := []struct {
		origin string
		want   bool
	}{
		{"", false},
		{"http://localhost:8080", true},
		{"http://127.0.0.1:8080", true},
		{"https://app.example", true},
		{"http://localhost:9999", false},
		{"ftp://localhost:8080", false},
		{"http://evil.example", false},
	}

	for _, tc := range testCases {
		t.Run(tc.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			_, ok := s.checkOrigin(req)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestWebSocketRejectsOrigin(t *testing.T) {
	s := newTestServer(t, 5)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApply(t *testing.T) {
	s := newTestServer(t, 100)
	ctx := context.Background()

	require.NoError(t, s.Apply(ctx, Command{Type: "page", Page: 3}))
	assert.Equal(t, 3, s.Grid().Page())

	ids := s.Grid().RowIDs()
	require.NotEmpty(t, ids)
	require.NoError(t, s.Apply(ctx, Command{Type: "select", Row: ids[0]}))
	selected, ok := s.Grid().GetSelected()
	require.True(t, ok)
	assert.Equal(t, 60, selected.Index)

	hidden := true
	require.NoError(t, s.Apply(ctx, Command{Type: "hide", Hidden: &hidden, Columns: []string{"name"}}))
	assert.True(t, s.Grid().IsHiddenColumn("name"))
	assert.False(t, s.Grid().IsHiddenColumn("id"))

	assert.Error(t, s.Apply(ctx, Command{Type: "hide"}))
	assert.Error(t, s.Apply(ctx, Command{Type: "explode"}))
}

func TestCommandError(t *testing.T) {
	s := newTestServer(t, 10)
	s.Grid().AddRow(map[string]interface{}{"id": 10, "name": "late"})

	err := s.Apply(context.Background(), Command{Type: "page", Page: 1})
	require.ErrorIs(t, err, gerrors.ErrNotLoaded)

	msg := commandError(err)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Content, "please load the Grid first")
	assert.Equal(t, gerrors.CodeNotLoaded, msg.Details["code"])
	assert.Equal(t, "setPage", msg.Details["operation"])

	plain := commandError(fmt.Errorf("disk gone"))
	assert.Equal(t, "unknown", plain.Details["type"])
}

func TestReload(t *testing.T) {
	s := newTestServer(t, 10)
	require.Equal(t, 10, s.Grid().GetModel().Len())

	writeRecords(t, s.config.Data.File, 70)
	require.NoError(t, s.Reload(context.Background()))

	assert.True(t, s.Grid().Loaded())
	assert.Equal(t, 70, s.Grid().GetModel().Len())
	assert.Equal(t, 3, s.Grid().NumberOfPages())

	select {
	case msg := <-s.broadcast:
		assert.Contains(t, string(msg), `"type":"grid"`)
	default:
		t.Fatal("reload did not broadcast the grid")
	}
}

func TestWebSocketPageCommand(t *testing.T) {
	s := newTestServer(t, 100)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	s.config.Server.AllowedOrigins = []string{ts.URL}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{ts.URL}},
	})
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.NoError(t, wsjson.Write(ctx, conn, Command{Type: "page", Page: 2}))

	var msg UpdateMessage
	for msg.Type != "grid" {
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
	}
	assert.Equal(t, s.Grid().ID(), msg.Target)
	assert.Contains(t, msg.Content, `data-index="30"`)
	assert.NotContains(t, msg.Content, `data-index="29"`)

	require.NoError(t, wsjson.Write(ctx, conn, Command{Type: "explode"}))
	var failure UpdateMessage
	require.NoError(t, wsjson.Read(ctx, conn, &failure))
	assert.Equal(t, "error", failure.Type)
	assert.Equal(t, "INVALID_COMMAND", failure.Details["code"])
	assert.Equal(t, "contract", failure.Details["type"])
	assert.Equal(t, false, failure.Details["recoverable"])

	require.NoError(t, wsjson.Write(ctx, conn, Command{Type: "page", Page: 99}))
	// out-of-range pages are ignored and still broadcast the unchanged grid
	msg = UpdateMessage{}
	for msg.Type == "" {
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
	}
	assert.Equal(t, 2, s.Grid().Page())
}
