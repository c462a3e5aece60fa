package server

import (
	"net/http"
	"strconv"
	"strings"

	"VolScope/internal/collector"
	"VolScope/internal/errors"

	"github.com/go-playground/validator/v10"
)

// volatilityRequest is the validated form of a dashboard or API query.
type volatilityRequest struct {
	Ticker   string `validate:"required,max=15,printascii,excludesall=/?#&<> "`
	Lookback string `validate:"omitempty,oneof=1mo 3mo 6mo 1y 2y 5y"`
	Window   int    `validate:"omitempty,gte=2,lte=252"`
}

func parseWindow(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeInvalidRequest, "window must be an integer, got %q", raw)
	}
	return n, nil
}

// bind validates the request and resolves defaults from the collector.
func (s *Server) bind(ticker string, r *http.Request) (volatilityRequest, collector.Lookback, int, error) {
	q := r.URL.Query()
	window, err := parseWindow(q.Get("window"))
	if err != nil {
		return volatilityRequest{}, "", 0, err
	}
	req := volatilityRequest{
		Ticker:   collector.NormalizeSymbol(ticker),
		Lookback: strings.TrimSpace(q.Get("lookback")),
		Window:   window,
	}
	if err := s.validate.Struct(req); err != nil {
		return req, "", 0, errors.Wrap(errors.ErrCodeInvalidRequest, describeValidation(err), err)
	}

	lookback := s.collector.Lookback
	if req.Lookback != "" {
		lookback = collector.Lookback(req.Lookback)
	}
	if window == 0 {
		window = s.collector.Window
	}
	return req, lookback, window, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Ticker":
		return "invalid ticker symbol"
	case "Lookback":
		return "lookback must be one of 1mo, 3mo, 6mo, 1y, 2y, 5y"
	case "Window":
		return "window must be between 2 and 252"
	default:
		return "invalid " + strings.ToLower(fe.Field())
	}
}
