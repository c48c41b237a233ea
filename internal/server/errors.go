package server

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/blackwell-systems/basketmine/internal/dataset"
	"github.com/blackwell-systems/basketmine/internal/mining"
	"github.com/blackwell-systems/basketmine/internal/store"
)

var (
	errBadRequest       = errors.New("bad request")
	errHistoryDisabled  = errors.New("run history is not available on this server")
	errNoTransactionSrc = errors.New("one of transactions, baskets or csv is required")
)

// statusFor maps an error chain to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, errNoTransactionSrc),
		errors.Is(err, mining.ErrInvalidThreshold),
		errors.Is(err, mining.ErrEmptyTransactionStore),
		errors.Is(err, dataset.ErrNoItemColumns):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrAmbiguousRunID):
		return http.StatusConflict
	case errors.Is(err, errHistoryDisabled), errors.Is(err, store.ErrNotInitialized):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorKind names the class of a strategy failure for API clients.
func errorKind(err error) string {
	switch {
	case errors.Is(err, mining.ErrInvalidThreshold):
		return "invalid_threshold"
	case errors.Is(err, mining.ErrEmptyTransactionStore):
		return "empty_transaction_store"
	case errors.Is(err, mining.ErrInconsistentItemsetTable):
		return "inconsistent_itemset_table"
	case errors.Is(err, mining.ErrStrategyUnavailable):
		return "strategy_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "strategy_failure"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, JSON{"error": err.Error()})
}
