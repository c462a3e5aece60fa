package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"VolScope/internal/collector"
	"VolScope/internal/model"
	"VolScope/internal/report"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the historical volatility of one ticker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Stock ticker symbol",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "lookback",
				Aliases: []string{"l"},
				Usage:   "History window: 1mo, 3mo, 6mo, 1y, 2y or 5y. Defaults to data_source.lookback",
			},
			&cli.IntFlag{
				Name:    "window",
				Aliases: []string{"w"},
				Usage:   "Rolling window in trading days. Defaults to data_source.window",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Also print the date, close and rolling HV table",
			},
		},
		Action: showAction,
	}
}

func showAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	lookback := a.collector.Lookback
	if v := cmd.String("lookback"); v != "" {
		if lookback, err = collector.ParseLookback(v); err != nil {
			return err
		}
	}
	window := int(cmd.Int("window"))
	if window == 0 {
		window = a.collector.Window
	}

	analysis, err := a.collector.CollectWith(ctx, cmd.String("ticker"), lookback, window)
	if err != nil {
		a.log.Debug("show failed", zap.Error(err))
		return cli.Exit(report.UserMessage(err), 1)
	}

	opts := a.reportOptions()
	opts.Lookback = string(lookback)
	renderReport(cmd.Root().Writer, report.Build(analysis, opts), cmd.Bool("raw"))
	return nil
}

func renderReport(w io.Writer, r *model.Report, raw bool) {
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%s: %s", r.Title, r.Symbol)))
	fmt.Fprintln(w, "Historical Volatility (HV): "+HVStyle.Render(r.AnnualizedHVText))
	fmt.Fprintf(w, "%s (latest): %s\n", r.SeriesLabel, report.FormatPercent(r.LatestRollingHV))
	fmt.Fprintln(w, HelpStyle.Render(fmt.Sprintf("%s | lookback %s | window %d | %d returns | last close %s",
		r.Source, r.Lookback, r.Window, r.Observations, report.Price(r.LastClose))))

	if !raw {
		return
	}
	fmt.Fprintln(w)
	if len(r.Table) == 0 {
		fmt.Fprintln(w, HelpStyle.Render(fmt.Sprintf("Not enough history for a %d-day window.", r.Window)))
		return
	}
	fmt.Fprintln(w, renderTable(r))
}

func renderTable(r *model.Report) string {
	rows := make([][]string, 0, len(r.Table))
	for _, row := range r.Table {
		rows = append(rows, []string{
			row.Date.Format("2006-01-02"),
			report.Price(row.Close),
			report.Percent(row.HV),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Close", strings.TrimSpace(r.SeriesLabel)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return CellStyle
		})
	return t.String()
}
