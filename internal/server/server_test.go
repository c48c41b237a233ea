package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/basketmine/internal/mining"
	"github.com/blackwell-systems/basketmine/internal/store"
)

var scenario = [][]string{{"a", "b"}, {"a", "b", "c"}, {"a"}, {"b", "c"}}

// countingStrategy wraps Apriori and counts Mine calls.
type countingStrategy struct {
	calls *int32
}

func (countingStrategy) Name() string { return "counting" }

func (c countingStrategy) Mine(ctx context.Context, txns *mining.Transactions, minSupport float64) (*mining.Table, error) {
	atomic.AddInt32(c.calls, 1)
	return mining.Apriori{}.Mine(ctx, txns, minSupport)
}

func newTestServer(t *testing.T, withStore bool, cfg Config) (*Server, *store.Store) {
	t.Helper()
	var st *store.Store
	if withStore {
		var err error
		st, err = store.Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
	}
	s, err := New(st, cfg)
	require.NoError(t, err)
	return s, st
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndStrategies(t *testing.T) {
	s, _ := newTestServer(t, false, Config{})
	h := s.Router()

	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","history":false}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/strategies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"strategies":["brute","apriori","fpgrowth"]}`, rec.Body.String())
}

func TestPostMine_AllStrategies(t *testing.T) {
	s, _ := newTestServer(t, false, Config{CacheSize: 8})

	rec := do(t, s.Router(), http.MethodPost, "/mine", MineRequest{
		Transactions:  scenario,
		MinSupport:    50,
		MinConfidence: 0.6,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[MineResponse](t, rec)
	assert.Equal(t, "api", resp.Dataset)
	assert.Equal(t, 4, resp.Transactions)
	assert.Equal(t, 0.5, resp.MinSupport)
	assert.Equal(t, 2, resp.MinCount)
	assert.True(t, resp.Agree)
	assert.False(t, resp.Cached)
	require.Len(t, resp.Results, 3)

	for _, r := range resp.Results {
		assert.Empty(t, r.Error, r.Strategy)
		assert.Len(t, r.Itemsets, 5, r.Strategy)
		assert.Len(t, r.Rules, 4, r.Strategy)
	}
	assert.Equal(t, "a", resp.Results[0].Itemsets[0].Itemset)
	assert.Equal(t, 3, resp.Results[0].Itemsets[0].Count)
}

func TestPostMine_InputSources(t *testing.T) {
	s, _ := newTestServer(t, false, Config{})
	h := s.Router()

	rec := do(t, h, http.MethodPost, "/mine", MineRequest{
		Baskets:    "a,b\na,b,c\na\nb,c\n",
		MinSupport: 0.5, MinConfidence: 0.6,
		Strategies: []string{"FPGrowth"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[MineResponse](t, rec)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "fpgrowth", resp.Results[0].Strategy)
	assert.Len(t, resp.Results[0].Itemsets, 5)

	rec = do(t, h, http.MethodPost, "/mine", MineRequest{
		Dataset:    "grocery",
		CSV:        "Item1,Item2,Item3\na,b,\na,b,c\na,,\nb,c,\n",
		MinSupport: 0.5, MinConfidence: 0.6,
		Strategies: []string{"brute"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decode[MineResponse](t, rec)
	assert.Equal(t, "grocery", resp.Dataset)
	assert.Len(t, resp.Results[0].Rules, 4)
}

func TestPostMine_BadRequests(t *testing.T) {
	s, _ := newTestServer(t, false, Config{})
	h := s.Router()

	tests := []struct {
		name string
		body any
		code int
		msg  string
	}{
		{"invalid json", "{", http.StatusBadRequest, "invalid json"},
		{"no source", MineRequest{MinSupport: 0.5, MinConfidence: 0.5}, http.StatusBadRequest, "required"},
		{"empty baskets", MineRequest{Transactions: [][]string{{""}, {" "}}, MinSupport: 0.5, MinConfidence: 0.5}, http.StatusBadRequest, "empty transaction store"},
		{"zero support", MineRequest{Transactions: scenario, MinConfidence: 0.5}, http.StatusBadRequest, "min_support"},
		{"huge confidence", MineRequest{Transactions: scenario, MinSupport: 0.5, MinConfidence: 150}, http.StatusBadRequest, "min_confidence"},
		{"no item columns", MineRequest{CSV: "id,product\n1,x\n", MinSupport: 0.5, MinConfidence: 0.5}, http.StatusBadRequest, "no item columns"},
		{"persist without store", MineRequest{Transactions: scenario, MinSupport: 0.5, MinConfidence: 0.5, Persist: true}, http.StatusServiceUnavailable, "not available"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/mine", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			body := decode[map[string]string](t, rec)
			assert.Contains(t, strings.ToLower(body["error"]), tt.msg)
		})
	}
}

func TestPostMine_UnknownStrategyReported(t *testing.T) {
	s, _ := newTestServer(t, false, Config{})

	rec := do(t, s.Router(), http.MethodPost, "/mine", MineRequest{
		Transactions: scenario, MinSupport: 0.5, MinConfidence: 0.6,
		Strategies: []string{"apriori", "eclat"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[MineResponse](t, rec)
	require.Len(t, resp.Results, 2)
	assert.Empty(t, resp.Results[0].Error)
	assert.Equal(t, "eclat", resp.Results[1].Strategy)
	assert.Equal(t, "strategy_unavailable", resp.Results[1].ErrorKind)
	assert.True(t, resp.Agree)
}

func TestPostMine_Cache(t *testing.T) {
	var calls int32
	orch := mining.NewOrchestrator(countingStrategy{calls: &calls})
	s, _ := newTestServer(t, false, Config{CacheSize: 4, Orchestrator: orch})
	h := s.Router()

	req := MineRequest{Transactions: scenario, MinSupport: 0.5, MinConfidence: 0.6}
	first := decode[MineResponse](t, do(t, h, http.MethodPost, "/mine", req))
	assert.False(t, first.Cached)

	// Same baskets in another order and as a percentage hit the cache.
	req.Transactions = [][]string{{"b", "a"}, {"c", "b", "a"}, {"a"}, {"c", "b"}}
	req.MinSupport = 50
	req.Parallel = true
	second := decode[MineResponse](t, do(t, h, http.MethodPost, "/mine", req))
	assert.True(t, second.Cached)
	assert.Equal(t, first.Results, second.Results)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	req.MinConfidence = 0.9
	third := decode[MineResponse](t, do(t, h, http.MethodPost, "/mine", req))
	assert.False(t, third.Cached)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestPostMine_NoCache(t *testing.T) {
	var calls int32
	s, _ := newTestServer(t, false, Config{Orchestrator: mining.NewOrchestrator(countingStrategy{calls: &calls})})
	h := s.Router()

	req := MineRequest{Transactions: scenario, MinSupport: 0.5, MinConfidence: 0.6}
	do(t, h, http.MethodPost, "/mine", req)
	resp := decode[MineResponse](t, do(t, h, http.MethodPost, "/mine", req))
	assert.False(t, resp.Cached)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestRunsLifecycle(t *testing.T) {
	s, _ := newTestServer(t, true, Config{})
	h := s.Router()

	rec := do(t, h, http.MethodPost, "/mine", MineRequest{
		Dataset: "scenario", Transactions: scenario,
		MinSupport: 0.5, MinConfidence: 0.6,
		Strategies: []string{"apriori", "fpgrowth"}, Persist: true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	mined := decode[MineResponse](t, rec)
	require.NotEmpty(t, mined.BatchID)

	rec = do(t, h, http.MethodGet, "/runs?dataset=scenario", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Runs []runView `json:"runs"`
	}](t, rec)
	require.Len(t, list.Runs, 2)
	run := list.Runs[0]
	assert.Equal(t, mined.BatchID, run.BatchID)
	assert.Equal(t, 5, run.Itemsets)
	assert.Equal(t, 4, run.Rules)

	rec = do(t, h, http.MethodGet, "/runs/"+run.ID[:8], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, run.ID, decode[runView](t, rec).ID)

	rec = do(t, h, http.MethodGet, "/runs/"+run.ID+"/itemsets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	itemsets := decode[struct {
		Itemsets []map[string]any `json:"itemsets"`
	}](t, rec)
	assert.Len(t, itemsets.Itemsets, 5)

	rec = do(t, h, http.MethodGet, "/runs/"+run.ID+"/rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rules := decode[struct {
		Rules []map[string]any `json:"rules"`
	}](t, rec)
	assert.Len(t, rules.Rules, 4)

	rec = do(t, h, http.MethodDelete, "/runs/"+run.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/runs/"+run.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/runs?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRuns_WithoutStore(t *testing.T) {
	s, _ := newTestServer(t, false, Config{})
	h := s.Router()

	for _, path := range []string{"/runs", "/runs/abc", "/runs/abc/itemsets", "/runs/abc/rules"} {
		rec := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
	rec := do(t, h, http.MethodDelete, "/runs/abc", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, false, Config{})
	rec := do(t, s.Router(), http.MethodGet, "/mine", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(mining.ErrInvalidThreshold))
	assert.Equal(t, http.StatusNotFound, statusFor(store.ErrRunNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(store.ErrAmbiguousRunID))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(store.ErrNotInitialized))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}

func TestErrorKind(t *testing.T) {
	wrapped := &mining.StrategyError{Strategy: "x", Err: mining.ErrStrategyFailure}
	assert.Equal(t, "strategy_failure", errorKind(wrapped))
	assert.Equal(t, "timeout", errorKind(context.DeadlineExceeded))
	assert.Equal(t, "canceled", errorKind(context.Canceled))
	assert.Equal(t, "inconsistent_itemset_table", errorKind(mining.ErrInconsistentItemsetTable))
}
