package notifier

import (
	"fmt"
	"html"
	"strings"

	"VolScope/internal/model"
	"VolScope/internal/recorder"
	"VolScope/internal/report"
)

// FormatReport formats a volatility report into a Telegram message.
func FormatReport(r *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(r.Symbol), r.AsOf.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Historical Volatility (HV): <b>%s</b>\n", r.AnnualizedHVText))
	b.WriteString(fmt.Sprintf("%s: %s\n", html.EscapeString(r.SeriesLabel), report.FormatPercent(r.LatestRollingHV)))
	b.WriteString(fmt.Sprintf("Last close: %s\n\n", report.Price(r.LastClose)))
	b.WriteString(fmt.Sprintf("Lookback %s | window %d | %d returns | %s",
		r.Lookback, r.Window, r.Observations, html.EscapeString(r.Source)))

	return b.String()
}

// FormatFailure formats a per-ticker failure using the user-facing message for err.
func FormatFailure(symbol string, err error) string {
	return fmt.Sprintf("❌ <b>%s</b>: %s", html.EscapeString(symbol), html.EscapeString(report.UserMessage(err)))
}

// FormatHistory lists recorded snapshots, newest first.
func FormatHistory(symbol string, snaps []recorder.Snapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>%s history</b>\n\n", html.EscapeString(symbol)))
	if len(snaps) == 0 {
		b.WriteString("No snapshots recorded yet.")
		return b.String()
	}
	for _, s := range snaps {
		b.WriteString(fmt.Sprintf("%s  HV %s | rolling %s | close %s\n",
			s.AsOf.Format("2006-01-02"),
			report.FormatPercent(s.AnnualizedHV),
			report.FormatPercent(s.LatestRollingHV),
			report.Price(s.LastClose)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatWatchlist shows the tickers covered by the scheduled run.
func FormatWatchlist(tickers []string, schedule string) string {
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n\n")
	if len(tickers) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, t := range tickers {
		b.WriteString(fmt.Sprintf("• %s\n", html.EscapeString(t)))
	}
	b.WriteString(fmt.Sprintf("\nSchedule: <code>%s</code>", html.EscapeString(schedule)))
	return b.String()
}

// HelpText lists the supported bot commands.
func HelpText() string {
	return "Available commands:\n" +
		"• /hv TICKER : historical volatility report\n" +
		"• /history TICKER : recorded snapshots\n" +
		"• /watchlist : scheduled tickers"
}
