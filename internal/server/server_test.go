package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/graphscope/internal/errors"
	"github.com/rohankatakam/graphscope/internal/snapshot"
	"github.com/rohankatakam/graphscope/internal/subgraph"
	"github.com/rohankatakam/graphscope/internal/tables"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newABCStore builds A -r1-> B -r2-> C
func newABCStore(t *testing.T) *subgraph.MemoryStore {
	t.Helper()
	store, err := subgraph.NewMemoryStore(
		[]subgraph.Node{
			{ID: 1, Labels: []string{"County"}, Properties: map[string]any{"name": "A", "county": "Benton"}},
			{ID: 2, Labels: []string{"Program"}, Properties: map[string]any{"name": "B", "county": "Linn"}},
			{ID: 3, Labels: []string{"Organization", "Agency"}, Properties: map[string]any{"name": "C"}},
		},
		[]subgraph.Relationship{
			{ID: 10, Type: "FUNDS", StartNodeID: 1, EndNodeID: 2},
			{ID: 11, Type: "RUN_BY", StartNodeID: 2, EndNodeID: 3},
		},
	)
	require.NoError(t, err)
	return store
}

func newTestServer(t *testing.T, deps Deps, opts Options) *Server {
	t.Helper()
	if deps.Engine == nil {
		deps.Engine = subgraph.NewEngine(newABCStore(t), subgraph.DefaultOptions())
	}
	if deps.Key == (subgraph.EntityKey{}) {
		deps.Key = subgraph.LabelKey()
	}
	if opts.CORSOrigins == nil {
		opts.CORSOrigins = []string{"*"}
	}
	return New(deps, opts, quietLogger())
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodePayload(t *testing.T, rec *httptest.ResponseRecorder) subgraph.Payload {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p subgraph.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func nodeIDs(p subgraph.Payload) []subgraph.ID {
	ids := make([]subgraph.ID, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func relIDs(p subgraph.Payload) []subgraph.ID {
	ids := make([]subgraph.ID, 0, len(p.Relationships))
	for _, r := range p.Relationships {
		ids = append(ids, r.ID)
	}
	return ids
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestPing(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{})
	rec := do(t, s, http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `"pong!"`, rec.Body.String())
}

func TestRetrieveSubgraph(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{})

	p := decodePayload(t, do(t, s, http.MethodPost, "/retrieveSubgraph", `{"nodes":[1,2],"relations":[10]}`))
	assert.ElementsMatch(t, []subgraph.ID{1, 2}, nodeIDs(p))
	assert.Equal(t, []subgraph.ID{10}, relIDs(p))

	for _, n := range p.Nodes {
		if n.ID == 1 {
			assert.Equal(t, "County", n.Group)
			assert.Equal(t, "Benton", n.Properties["county"])
		}
	}
	assert.Equal(t, subgraph.ID(1), p.Relationships[0].Source)
	assert.Equal(t, subgraph.ID(2), p.Relationships[0].Target)
	assert.Equal(t, "FUNDS", p.Relationships[0].Type)
}

func TestRetrieveSubgraph_EndpointsPulledIn(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{})

	p := decodePayload(t, do(t, s, http.MethodPost, "/retrieveSubgraph", `{"relations":[11]}`))
	assert.ElementsMatch(t, []subgraph.ID{2, 3}, nodeIDs(p))
}

func TestRetrieveSubgraph_EmptyAndUnknown(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{})

	rec := do(t, s, http.MethodPost, "/retrieveSubgraph", "")
	assert.JSONEq(t, `{"nodes":[],"relationships":[]}`, rec.Body.String())

	p := decodePayload(t, do(t, s, http.MethodPost, "/retrieveSubgraph", `{"nodes":[1,999],"relations":[12345]}`))
	assert.Equal(t, []subgraph.ID{1}, nodeIDs(p))
	assert.Empty(t, p.Relationships)
}

func TestRetrieveSubgraph_PropertyKey(t *testing.T) {
	s := newTestServer(t, Deps{Key: subgraph.PropertyKey("county")}, Options{})

	p := decodePayload(t, do(t, s, http.MethodPost, "/retrieveSubgraph", `{"nodes":[2,3]}`))
	groups := map[subgraph.ID]string{}
	for _, n := range p.Nodes {
		groups[n.ID] = n.Group
	}
	assert.Equal(t, "Linn", groups[2])
	assert.Equal(t, "", groups[3], "missing attribute serializes as empty group")
}

func TestDeleteNode(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{})

	p := decodePayload(t, do(t, s, http.MethodPost, "/deleteNode", `{"nodes":[1,2],"relations":[10],"delete_node":1}`))
	assert.Equal(t, []subgraph.ID{2}, nodeIDs(p))
	assert.Empty(t, p.Relationships)

	// absent target is a no-op
	p = decodePayload(t, do(t, s, http.MethodPost, "/deleteNode", `{"nodes":[1,2],"relations":[10],"delete_node":3}`))
	assert.ElementsMatch(t, []subgraph.ID{1, 2}, nodeIDs(p))
	assert.Equal(t, []subgraph.ID{10}, relIDs(p))
}

func TestDeleteNode_MissingTarget(t *testing.T) {
	store := &countingStore{Store: newABCStore(t)}
	s := newTestServer(t, Deps{Engine: subgraph.NewEngine(store, subgraph.DefaultOptions())}, Options{})

	rec := do(t, s, http.MethodPost, "/deleteNode", `{"nodes":[1,2]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "delete_node")
	assert.Zero(t, store.calls, "rejected before any store access")
}

func TestExpandNode(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{})

	p := decodePayload(t, do(t, s, http.MethodPost, "/expandNode", `{"nodes":[2],"expand_node":2,"limit_number":5}`))
	assert.ElementsMatch(t, []subgraph.ID{1, 2, 3}, nodeIDs(p))
	assert.ElementsMatch(t, []subgraph.ID{10, 11}, relIDs(p))
}

func TestExpandNode_LimitAndDefault(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{})

	p := decodePayload(t, do(t, s, http.MethodPost, "/expandNode", `{"nodes":[2],"expand_node":2,"limit_number":1}`))
	assert.Len(t, p.Relationships, 1)
	assert.Equal(t, []subgraph.ID{10}, relIDs(p), "lowest relationship id first")

	// omitted limit uses the default of 5
	p = decodePayload(t, do(t, s, http.MethodPost, "/expandNode", `{"nodes":[2],"expand_node":2}`))
	assert.Len(t, p.Relationships, 2)

	// node outside the view leaves it unchanged
	p = decodePayload(t, do(t, s, http.MethodPost, "/expandNode", `{"nodes":[2],"expand_node":1}`))
	assert.Equal(t, []subgraph.ID{2}, nodeIDs(p))
	assert.Empty(t, p.Relationships)
}

func TestExpandNode_Malformed(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{})

	tests := []struct {
		name string
		body string
	}{
		{"missing target", `{"nodes":[2]}`},
		{"negative limit", `{"nodes":[2],"expand_node":2,"limit_number":-1}`},
		{"not json", `{"nodes":`},
		{"wrong type", `{"nodes":"two"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/expandNode", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, errorBody(t, rec))
		})
	}
}

func TestProjection_StoreUnavailable(t *testing.T) {
	failing := &failingStore{err: fmt.Errorf("connection refused")}
	s := newTestServer(t, Deps{Engine: subgraph.NewEngine(failing, subgraph.DefaultOptions()), Health: failing}, Options{})

	rec := do(t, s, http.MethodPost, "/retrieveSubgraph", `{"nodes":[1]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, errorBody(t, rec), "connection refused")

	rec = do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthz(t *testing.T) {
	store := newABCStore(t)
	s := newTestServer(t, Deps{Health: store}, Options{})

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGraphAndTableData(t *testing.T) {
	dir := t.TempDir()
	graphJSON := `{"nodes":[{"id":1,"labels":["County"],"properties":{},"group":"County"}],"relationships":[]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, snapshot.DefaultGraphFile), []byte(graphJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, snapshot.DefaultTablesFile), []byte(`[
		{"table_name":"funding","table_data":[{"amount":10}],"table_info":[{"name":"amount"}]},
		{"table_name":"programs","table_data":[],"table_info":[]}
	]`), 0644))

	files := snapshot.NewFileStore(dir, "", "")
	s := newTestServer(t, Deps{Snapshots: files, Tables: tables.NewJSONSource(files, quietLogger())}, Options{})

	rec := do(t, s, http.MethodGet, "/getGraphData", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, graphJSON, rec.Body.String(), "snapshot served verbatim")

	rec = do(t, s, http.MethodGet, "/getTableData", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"data": {
			"funding": {"tableData":[{"amount":10}],"tableInfo":[{"name":"amount"}]},
			"programs": {"tableData":[],"tableInfo":[]}
		},
		"sheet": ["funding","programs"]
	}`, rec.Body.String())
}

func TestGraphData_Missing(t *testing.T) {
	s := newTestServer(t, Deps{Snapshots: snapshot.NewFileStore(t.TempDir(), "", "")}, Options{})
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/getGraphData", "").Code)

	s = newTestServer(t, Deps{}, Options{})
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/getGraphData", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/getTableData", "").Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{})
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodGet, "/retrieveSubgraph", "").Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/expandNode", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{CORSOrigins: []string{"https://ppod.example.com"}})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://ppod.example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "https://ppod.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{})

	rec := do(t, s, http.MethodGet, "/ping", "")
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get(requestIDHeader))
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{RateLimit: 0.001, RateBurst: 2})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/retrieveSubgraph", `{}`).Code)
	}
	rec := do(t, s, http.MethodPost, "/retrieveSubgraph", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// unthrottled routes stay available
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/ping", "").Code)
}

func TestMaxBodyBytes(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{MaxBodyBytes: 16})

	body := `{"nodes":[` + strings.Repeat("1,", 32) + `1]}`
	rec := do(t, s, http.MethodPost, "/retrieveSubgraph", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRecovery(t *testing.T) {
	s := newTestServer(t, Deps{Health: panicHealth{}}, Options{})

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorBody(t, rec))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{})
	do(t, s, http.MethodGet, "/ping", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "graphscope_http_requests_total")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(errors.MalformedRequest("bad")))
	assert.Equal(t, http.StatusNotFound, statusFor(errors.NotFoundf("gone")))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(errors.StoreUnavailable(fmt.Errorf("down"), "select")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.InternalError("boom")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("plain")))
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, Deps{}, Options{ShutdownTimeout: time.Second})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/retrieveSubgraph", "application/json",
		bytes.NewBufferString(`{"nodes":[1,2],"relations":[10]}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

type countingStore struct {
	subgraph.Store
	calls int
}

func (c *countingStore) NodesByID(ctx context.Context, ids []subgraph.ID) ([]subgraph.Node, error) {
	c.calls++
	return c.Store.NodesByID(ctx, ids)
}

type failingStore struct {
	err error
}

func (f *failingStore) NodesByID(ctx context.Context, ids []subgraph.ID) ([]subgraph.Node, error) {
	return nil, f.err
}

func (f *failingStore) RelationshipsByID(ctx context.Context, ids []subgraph.ID) ([]subgraph.Relationship, error) {
	return nil, f.err
}

func (f *failingStore) Neighbors(ctx context.Context, nodeID subgraph.ID, exclude []subgraph.ID, limit int) (subgraph.Neighborhood, error) {
	return subgraph.Neighborhood{}, f.err
}

func (f *failingStore) HealthCheck(ctx context.Context) error {
	return errors.StoreUnavailable(f.err, "health check failed")
}

type panicHealth struct{}

func (panicHealth) HealthCheck(ctx context.Context) error {
	panic("driver exploded")
}
