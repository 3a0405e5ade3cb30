package notifier

import (
	"fmt"
	"strings"
	"time"

	"SignalSentinel/internal/backtest"
	"SignalSentinel/internal/model"
)

func resultEmoji(r model.Result) string {
	switch r {
	case model.ResultTarget:
		return "🎯"
	case model.ResultStop:
		return "🛑"
	case model.ResultNoData:
		return "❓"
	default:
		return "⏸"
	}
}

// FormatBatchReport renders a completed batch run for Telegram.
func FormatBatchReport(res *backtest.BatchResult) string {
	var b strings.Builder
	sum := res.Summary

	b.WriteString(fmt.Sprintf("📊 <b>Backtest</b> | %s\n\n", sum.Date))

	for _, o := range res.Outcomes {
		b.WriteString(fmt.Sprintf("%s <b>%s</b> → %s", resultEmoji(o.Result), o.Symbol, o.Result))
		switch {
		case o.Result == model.ResultTarget && o.EntryTime != nil && o.TargetTime != nil:
			b.WriteString(fmt.Sprintf(" (entry %s, target %s, %dm)",
				o.EntryTime.Format("15:04"), o.TargetTime.Format("15:04"), deref(o.MinutesToTarget)))
		case o.Result == model.ResultStop && o.EntryTime != nil && o.StopTime != nil:
			b.WriteString(fmt.Sprintf(" (entry %s, stop %s, %dm)",
				o.EntryTime.Format("15:04"), o.StopTime.Format("15:04"), deref(o.MinutesToStop)))
		case o.EntryHit && o.EntryTime != nil:
			b.WriteString(fmt.Sprintf(" (entered %s, undecided)", o.EntryTime.Format("15:04")))
		}
		if o.Origin == model.OriginSynthetic {
			b.WriteString(" [synthetic]")
		}
		b.WriteString("\n")
	}

	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("Signals: %d", sum.Total))
	if sum.Rejected > 0 {
		b.WriteString(fmt.Sprintf(" (+%d rejected)", sum.Rejected))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Data: primary %d | secondary %d | synthetic %d | no data %d\n",
		sum.Primary, sum.Secondary, sum.Synthetic, sum.NoData))
	b.WriteString(fmt.Sprintf("Elapsed: %s\n", sum.FinishedAt.Sub(sum.StartedAt).Round(time.Second)))

	if len(res.Rejected) > 0 {
		b.WriteString("\n⚠️ <b>Rejected at intake:</b>\n")
		for _, rej := range res.Rejected {
			b.WriteString(fmt.Sprintf("  %s: %s\n", rej.Signal.Symbol, rej.Reason))
		}
	}

	return b.String()
}

// FormatRunStatus renders the last recorded run summary.
func FormatRunStatus(sum *model.RunSummary) string {
	if sum == nil {
		return "No backtest runs recorded yet."
	}
	var b strings.Builder
	b.WriteString("📦 <b>Last run</b>\n\n")
	b.WriteString(fmt.Sprintf("Date: %s\n", sum.Date))
	b.WriteString(fmt.Sprintf("Run ID: <code>%s</code>\n", sum.RunID))
	b.WriteString(fmt.Sprintf("Signals: %d (rejected %d)\n", sum.Total, sum.Rejected))
	b.WriteString(fmt.Sprintf("Origins: primary %d | secondary %d | synthetic %d | no data %d\n",
		sum.Primary, sum.Secondary, sum.Synthetic, sum.NoData))
	b.WriteString(fmt.Sprintf("Finished: %s\n", sum.FinishedAt.In(model.ISTLocation()).Format("2006-01-02 15:04")))
	return b.String()
}

// FormatSignalList renders the stored signals for a date.
func FormatSignalList(date string, sigs []model.Signal) string {
	if len(sigs) == 0 {
		return fmt.Sprintf("No signals stored for %s.", date)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗒 <b>Signals</b> | %s\n\n", date))
	for _, s := range sigs {
		b.WriteString(fmt.Sprintf("%s %s  entry %.2f | target %.2f | stop %.2f\n",
			s.Symbol, s.Side, s.Entry, s.Target, s.StopLoss))
	}
	return b.String()
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
