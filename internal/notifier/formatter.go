package notifier

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"
	"time"

	"SwingSentinel/internal/model"
)

// AlertTitle is the subject line of an alert, e.g. "🚨 BUY AAPL".
func AlertTitle(a *model.Alert) string {
	return fmt.Sprintf("🚨 %s %s", a.Signal, a.Symbol)
}

// AlertBody lists the price and the evaluator's reason, followed by commentary when present.
func AlertBody(a *model.Alert) string {
	body := fmt.Sprintf("Price: $%.2f\n%s", a.Price, a.Reason)
	if a.Commentary != "" {
		body += "\n\nAI analysis: " + a.Commentary
	}
	return body
}

// StartupTitle and StartupBody announce a freshly started daemon.
const StartupTitle = "Job alert"

func StartupBody(symbols []string, interval time.Duration) string {
	return fmt.Sprintf("Successfully started daemon!\nMonitoring: %s\nRefresh interval: %s",
		strings.Join(symbols, ", "), interval)
}

// FormatStatus renders the latest decision per symbol as Telegram HTML.
func FormatStatus(decisions map[string]model.Decision, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>SwingSentinel status</b> | %s\n\n", at.Format("2006-01-02 15:04"))
	if len(decisions) == 0 {
		b.WriteString("No evaluations yet.")
		return b.String()
	}

	symbols := make([]string, 0, len(decisions))
	for s := range decisions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	for _, s := range symbols {
		d := decisions[s]
		fmt.Fprintf(&b, "%s <b>%s</b> %s $%.2f", signalIcon(d.Signal), html.EscapeString(s), d.Signal, d.Price)
		if d.Trigger == model.TriggerRules {
			fmt.Fprintf(&b, " | RSI %s / %s | %s", fmtRSI(d.Snapshot.RSICoarse), fmtRSI(d.Snapshot.RSIDaily), d.Snapshot.Squeeze)
		} else if d.Trigger != "" {
			fmt.Fprintf(&b, " | %s", d.Trigger)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatTickers lists the watched symbols.
func FormatTickers(symbols []string) string {
	return fmt.Sprintf("👀 <b>Watching %d tickers</b>\n%s", len(symbols), html.EscapeString(strings.Join(symbols, ", ")))
}

// FormatDecision renders one on-demand evaluation.
func FormatDecision(d model.Decision) string {
	msg := fmt.Sprintf("%s <b>%s</b>: %s at $%.2f\n%s",
		signalIcon(d.Signal), html.EscapeString(d.Symbol), d.Signal, d.Price, html.EscapeString(d.Reason))
	if d.Trigger != "" && d.Trigger != model.TriggerInsufficientData && !math.IsNaN(d.Snapshot.YearPosition) {
		msg += fmt.Sprintf("\n52-week range position: %.0f%%", d.Snapshot.YearPosition*100)
	}
	return msg
}

// FormatRecentAlerts lists past alerts, newest first.
func FormatRecentAlerts(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return "No alerts sent yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent alerts</b>\n")
	for _, a := range alerts {
		fmt.Fprintf(&b, "%s %s %s $%.2f\n", a.Timestamp.Format("01-02 15:04"), a.Signal, html.EscapeString(a.Symbol), a.Price)
	}
	return b.String()
}

func signalIcon(s model.Signal) string {
	switch s {
	case model.SignalBuy:
		return "🟢"
	case model.SignalSell:
		return "🔴"
	}
	return "⚪"
}

func fmtRSI(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", v)
}
