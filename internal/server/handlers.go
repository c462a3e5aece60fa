package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"VolScope/internal/collector"
	"VolScope/internal/errors"
	"VolScope/internal/model"
	"VolScope/internal/report"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type rollingPointJSON struct {
	Date string                   `json:"date"`
	HV   optional.Option[float64] `json:"hv"`
}

type tableRowJSON struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
	HV    float64 `json:"hv"`
}

type volatilityResponse struct {
	Symbol           string                   `json:"symbol"`
	Source           string                   `json:"source"`
	Lookback         string                   `json:"lookback"`
	Window           int                      `json:"window"`
	Observations     int                      `json:"observations"`
	AsOf             string                   `json:"as_of,omitempty"`
	LastClose        float64                  `json:"last_close"`
	AnnualizedHV     optional.Option[float64] `json:"annualized_hv"`
	AnnualizedHVText string                   `json:"annualized_hv_text"`
	SeriesLabel      string                   `json:"series_label"`
	Rolling          []rollingPointJSON       `json:"rolling"`
	Table            []tableRowJSON           `json:"table"`
}

type snapshotJSON struct {
	RecordedAt      string                   `json:"recorded_at"`
	AsOf            string                   `json:"as_of"`
	Source          string                   `json:"source"`
	Lookback        string                   `json:"lookback"`
	Window          int                      `json:"window"`
	Observations    int                      `json:"observations"`
	LastClose       float64                  `json:"last_close"`
	AnnualizedHV    optional.Option[float64] `json:"annualized_hv"`
	LatestRollingHV optional.Option[float64] `json:"latest_rolling_hv"`
}

type historyResponse struct {
	Symbol    string         `json:"symbol"`
	Snapshots []snapshotJSON `json:"snapshots"`
}

func toVolatilityResponse(r *model.Report) volatilityResponse {
	out := volatilityResponse{
		Symbol:           r.Symbol,
		Source:           r.Source,
		Lookback:         r.Lookback,
		Window:           r.Window,
		Observations:     r.Observations,
		LastClose:        r.LastClose,
		AnnualizedHV:     r.AnnualizedHV,
		AnnualizedHVText: r.AnnualizedHVText,
		SeriesLabel:      r.SeriesLabel,
		Rolling:          make([]rollingPointJSON, 0, len(r.Chart)),
		Table:            make([]tableRowJSON, 0, len(r.Table)),
	}
	if !r.AsOf.IsZero() {
		out.AsOf = r.AsOf.Format(dateLayout)
	}
	for _, p := range r.Chart {
		out.Rolling = append(out.Rolling, rollingPointJSON{Date: p.Date.Format(dateLayout), HV: p.HV})
	}
	for _, row := range r.Table {
		out.Table = append(out.Table, tableRowJSON{Date: row.Date.Format(dateLayout), Close: row.Close, HV: row.HV})
	}
	return out
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNoDataFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRequest:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeDataSourceUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeDataSourceFailed:
		return http.StatusBadGateway
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusInternalServerError
	}
}

// analyze is the single error boundary for one request. Failures are logged with detail
// and returned with the user-facing message only.
func (s *Server) analyze(r *http.Request, ticker string) (*model.Report, int, error) {
	_, lookback, window, err := s.bind(ticker, r)
	if err != nil {
		return nil, statusFor(err), err
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	a, err := s.collector.CollectWith(ctx, ticker, lookback, window)
	if err != nil {
		s.log.Warn("analysis failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("ticker", ticker),
			zap.String("code", errors.GetCode(err).String()),
			zap.Error(err))
		return nil, statusFor(err), err
	}

	opts := s.cfg.Report
	opts.Lookback = string(lookback)
	return report.Build(a, opts), http.StatusOK, nil
}

func (s *Server) handleVolatility(w http.ResponseWriter, r *http.Request) {
	rep, status, err := s.analyze(r, mux.Vars(r)["ticker"])
	if err != nil {
		s.writeError(w, r, status, err)
		return
	}
	writeJSON(w, http.StatusOK, toVolatilityResponse(rep))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "history is not enabled", RequestID: RequestID(r.Context())})
		return
	}
	symbol := collector.NormalizeSymbol(mux.Vars(r)["ticker"])
	if err := s.validate.Var(symbol, "required,max=15,printascii"); err != nil {
		s.writeError(w, r, http.StatusUnprocessableEntity, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid ticker symbol", err))
		return
	}
	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			s.writeError(w, r, http.StatusUnprocessableEntity, errors.New(errors.ErrCodeInvalidRequest, "limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	snaps, err := s.history.Recent(symbol, limit)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNoDataFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "history is not enabled", RequestID: RequestID(r.Context())})
			return
		}
		s.log.Error("read history", zap.String("ticker", symbol), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not read history", RequestID: RequestID(r.Context())})
		return
	}

	out := historyResponse{Symbol: symbol, Snapshots: make([]snapshotJSON, 0, len(snaps))}
	for _, sn := range snaps {
		out.Snapshots = append(out.Snapshots, snapshotJSON{
			RecordedAt:      sn.RecordedAt.UTC().Format(time.RFC3339),
			AsOf:            sn.AsOf.Format(dateLayout),
			Source:          sn.Source,
			Lookback:        sn.Lookback,
			Window:          sn.Window,
			Observations:    sn.Observations,
			LastClose:       sn.LastClose,
			AnnualizedHV:    sn.AnnualizedHV,
			LatestRollingHV: sn.LatestRollingHV,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok", "source": s.collector.Fetcher.Name()}
	if b, ok := s.collector.Fetcher.(breakerState); ok {
		state := b.State()
		body["breaker"] = state.String()
		if state == gobreaker.StateOpen {
			body["status"] = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error:     report.UserMessage(err),
		Code:      errors.GetCode(err).String(),
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
