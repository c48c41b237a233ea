package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/blackwell-systems/basketmine/internal/dataset"
	"github.com/blackwell-systems/basketmine/internal/export"
	"github.com/blackwell-systems/basketmine/internal/mining"
)

const (
	maxBodyBytes     = 32 << 20
	defaultRunsLimit = 50
	apiDataset       = "api"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, JSON{
		"status":  "ok",
		"history": s.store != nil,
	})
}

func (s *Server) ListStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, JSON{"strategies": s.orch.Strategies()})
}

// PostMine mines the posted transactions with the requested strategies.
func (s *Server) PostMine(w http.ResponseWriter, r *http.Request) {
	var req MineRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errBadRequest, "invalid json: "+err.Error()))
		return
	}
	if req.Persist && s.store == nil {
		writeError(w, errHistoryDisabled)
		return
	}

	txns, err := req.transactions()
	if err != nil {
		writeError(w, err)
		return
	}
	if txns.Len() == 0 {
		writeError(w, errors.Wrap(mining.ErrEmptyTransactionStore, "no non-empty transactions"))
		return
	}

	minSupport, err := mining.NormalizeThreshold(req.MinSupport)
	if err != nil {
		writeError(w, errors.Wrap(err, "min_support"))
		return
	}
	minConfidence, err := mining.NormalizeThreshold(req.MinConfidence)
	if err != nil {
		writeError(w, errors.Wrap(err, "min_confidence"))
		return
	}

	mreq := mining.Request{
		Transactions:  txns,
		MinSupport:    minSupport,
		MinConfidence: minConfidence,
		Strategies:    s.orch.Resolve(req.Strategies),
		Parallel:      req.Parallel,
	}

	report, cached := s.mine(r.Context(), mreq)

	name := strings.TrimSpace(req.Dataset)
	if name == "" {
		name = apiDataset
	}
	resp := buildResponse(name, mreq, report)
	resp.Cached = cached

	if req.Persist {
		batchID, _, err := s.store.SaveReport(name, mreq, report)
		if err != nil {
			writeError(w, errors.Wrap(err, "persist report"))
			return
		}
		resp.BatchID = batchID
	}

	writeJSON(w, http.StatusOK, resp)
}

// mine runs the request or returns a cached report. Reports that hit a
// deadline or cancellation are not cached.
func (s *Server) mine(ctx context.Context, req mining.Request) (*mining.Report, bool) {
	key := cacheKey(req)
	if s.cache != nil {
		if report, ok := s.cache.Get(key); ok {
			log.WithField("key", key[:12]).Debug("report cache hit")
			return report, true
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	report := s.orch.Run(ctx, req)

	if s.cache != nil && cacheable(report) {
		s.cache.Add(key, report)
	}
	return report, false
}

func cacheable(report *mining.Report) bool {
	for _, err := range report.Errors() {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
	}
	return true
}

// cacheKey hashes the canonical transactions, thresholds and strategy set.
// Execution mode does not change results and is left out.
func cacheKey(req mining.Request) string {
	strategies := append([]string(nil), req.Strategies...)
	sort.Strings(strategies)

	h := sha256.New()
	_ = json.NewEncoder(h).Encode(struct {
		Baskets       [][]string
		MinSupport    float64
		MinConfidence float64
		Strategies    []string
	}{req.Transactions.Baskets(), req.MinSupport, req.MinConfidence, strategies})
	return hex.EncodeToString(h.Sum(nil))
}

func (req *MineRequest) transactions() (*mining.Transactions, error) {
	switch {
	case len(req.Transactions) > 0:
		return mining.NewTransactions(req.Transactions), nil
	case strings.TrimSpace(req.Baskets) != "":
		txns, err := dataset.ReadBaskets(strings.NewReader(req.Baskets))
		if err != nil {
			return nil, errors.Wrap(errBadRequest, err.Error())
		}
		return txns, nil
	case strings.TrimSpace(req.CSV) != "":
		ds, err := dataset.ReadCSV(strings.NewReader(req.CSV), dataset.Options{Name: req.Dataset})
		if err != nil {
			if errors.Is(err, dataset.ErrNoItemColumns) {
				return nil, err
			}
			return nil, errors.Wrap(errBadRequest, err.Error())
		}
		return ds.Transactions, nil
	default:
		return nil, errNoTransactionSrc
	}
}

func buildResponse(name string, req mining.Request, report *mining.Report) *MineResponse {
	resp := &MineResponse{
		Dataset:       name,
		Transactions:  report.N,
		MinSupport:    req.MinSupport,
		MinConfidence: req.MinConfidence,
		MinCount:      mining.MinCount(req.MinSupport, report.N),
		Agree:         true,
		Results:       make([]StrategyResult, 0, len(report.Order)),
	}

	var reference *mining.Table
	for _, name := range report.Order {
		outcome := report.Outcomes[name]
		if outcome.Err != nil {
			resp.Results = append(resp.Results, StrategyResult{
				Strategy:  name,
				Error:     outcome.Err.Error(),
				ErrorKind: errorKind(outcome.Err),
			})
			continue
		}

		res := outcome.Result
		if reference == nil {
			reference = res.Table
		} else if !reference.Equal(res.Table) {
			resp.Agree = false
		}
		resp.Results = append(resp.Results, StrategyResult{
			Strategy:       name,
			Itemsets:       export.ItemsetRows(res.Table),
			Rules:          export.RuleRows(res.Rules),
			Candidates:     res.Table.Candidates(),
			ElapsedMS:      millis(res.Elapsed),
			RulesElapsedMS: millis(res.RulesElapsed),
		})
	}
	return resp
}

func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errHistoryDisabled)
		return
	}

	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errors.Wrapf(errBadRequest, "invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.URL.Query().Get("dataset"), limit)
	if err != nil {
		writeError(w, errors.Wrap(err, "list runs"))
		return
	}
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, newRunView(run))
	}
	writeJSON(w, http.StatusOK, JSON{"runs": views})
}

func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errHistoryDisabled)
		return
	}
	run, err := s.store.GetRun(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, errors.Wrap(err, "get run"))
		return
	}
	writeJSON(w, http.StatusOK, newRunView(run))
}

func (s *Server) GetRunItemsets(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errHistoryDisabled)
		return
	}
	run, err := s.store.GetRun(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, errors.Wrap(err, "get run"))
		return
	}
	rows, err := s.store.GetItemsets(run.ID)
	if err != nil {
		writeError(w, errors.Wrap(err, "get itemsets"))
		return
	}
	if rows == nil {
		rows = []export.ItemsetRow{}
	}
	writeJSON(w, http.StatusOK, JSON{"run_id": run.ID, "itemsets": rows})
}

func (s *Server) GetRunRules(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errHistoryDisabled)
		return
	}
	run, err := s.store.GetRun(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, errors.Wrap(err, "get run"))
		return
	}
	rows, err := s.store.GetRules(run.ID)
	if err != nil {
		writeError(w, errors.Wrap(err, "get rules"))
		return
	}
	if rows == nil {
		rows = []export.RuleRow{}
	}
	writeJSON(w, http.StatusOK, JSON{"run_id": run.ID, "rules": rows})
}

func (s *Server) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, errHistoryDisabled)
		return
	}
	run, err := s.store.GetRun(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, errors.Wrap(err, "get run"))
		return
	}
	if err := s.store.DeleteRun(run.ID); err != nil {
		writeError(w, errors.Wrap(err, "delete run"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
