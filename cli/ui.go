package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/tantralabs/sena/models"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED"))

	sectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	idleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)
)

// money renders a dollar amount with two decimals, sign before the symbol.
func money(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

func pct(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places) + "%"
}

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func renderAgents(statuses []models.AgentStatus) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Available agents") + "\n\n")
	for _, s := range statuses {
		online := okStyle.Render("online")
		if !s.Online {
			online = errorStyle.Render("offline")
		}
		state := idleStyle.Render("inactive")
		if s.Active {
			state = okStyle.Render("active")
		}
		fmt.Fprintf(&b, "%s (%s, %s)\n", sectionStyle.Render(s.Name), online, state)
		fmt.Fprintf(&b, "  Strategy: %s\n", s.Strategy)
		fmt.Fprintf(&b, "  Trades: %d\n", s.TotalTrades)
		fmt.Fprintf(&b, "  P&L: %s\n", money(s.NetPnL))
	}
	return b.String()
}

func renderSystem(s models.SystemStatus) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("System status") + "\n\n")
	b.WriteString(sectionStyle.Render("Overview") + "\n")
	fmt.Fprintf(&b, "  Total agents: %d\n", s.TotalAgents)
	fmt.Fprintf(&b, "  Active agents: %d\n", s.ActiveAgents)
	fmt.Fprintf(&b, "  Online agents: %d\n", s.OnlineAgents)
	b.WriteString(sectionStyle.Render("Performance") + "\n")
	fmt.Fprintf(&b, "  Total trades: %d\n", s.TotalTrades)
	fmt.Fprintf(&b, "  Win rate: %s\n", pct(s.WinRate, 2))
	fmt.Fprintf(&b, "  Net P&L: %s\n", money(s.NetPnL))
	return b.String()
}

func renderMetrics(name string, m models.Metrics) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(strings.ToUpper(name)+" metrics") + "\n\n")
	b.WriteString(sectionStyle.Render("Performance") + "\n")
	fmt.Fprintf(&b, "  Total trades: %d\n", m.TotalTrades)
	fmt.Fprintf(&b, "  Winning trades: %d\n", m.WinningTrades)
	fmt.Fprintf(&b, "  Losing trades: %d\n", m.LosingTrades)
	fmt.Fprintf(&b, "  Win rate: %s\n", pct(m.WinRate, 2))
	b.WriteString(sectionStyle.Render("Profit & loss") + "\n")
	fmt.Fprintf(&b, "  Total profit: %s\n", money(m.TotalProfit))
	fmt.Fprintf(&b, "  Total loss: %s\n", money(m.TotalLoss))
	fmt.Fprintf(&b, "  Net P&L: %s\n", money(m.NetProfit))
	fmt.Fprintf(&b, "  Avg profit: %s\n", money(m.AverageProfit))
	fmt.Fprintf(&b, "  Avg loss: %s\n", money(m.AverageLoss))
	b.WriteString(sectionStyle.Render("Risk") + "\n")
	fmt.Fprintf(&b, "  Profit factor: %s\n", fixed(m.ProfitFactor))
	fmt.Fprintf(&b, "  Sharpe ratio: %s\n", fixed(m.SharpeRatio))
	fmt.Fprintf(&b, "  Max drawdown: %s\n", money(m.MaxDrawdown))
	fmt.Fprintf(&b, "  Recovery factor: %s\n", fixed(m.RecoveryFactor))
	return b.String()
}

func renderAllMetrics(names []string, all map[string]models.Metrics) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Performance overview") + "\n\n")
	for _, name := range names {
		m := all[name]
		fmt.Fprintf(&b, "%s\n", sectionStyle.Render(name))
		fmt.Fprintf(&b, "  Win rate: %s\n", pct(m.WinRate, 1))
		fmt.Fprintf(&b, "  Net P&L: %s\n", money(m.NetProfit))
		fmt.Fprintf(&b, "  Trades: %d\n", m.TotalTrades)
	}
	return b.String()
}

func renderDecision(name string, d models.Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s executed\n", sectionStyle.Render(name))
	fmt.Fprintf(&b, "  Action: %s\n", strings.ToUpper(string(d.Action)))
	if d.IsTrade() {
		fmt.Fprintf(&b, "  Amount: %s\n", decimal.NewFromFloat(d.Amount).Round(8).String())
	}
	fmt.Fprintf(&b, "  Price: %s\n", money(d.Price))
	fmt.Fprintf(&b, "  P&L: %s\n", money(d.ProfitLoss))
	fmt.Fprintf(&b, "  Reason: %s\n", d.Reason)
	return b.String()
}

func renderHistory(name string, entries []models.LedgerEntry, limit int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(name+" history") + "\n\n")
	if len(entries) == 0 {
		b.WriteString("  No trades yet\n")
		return b.String()
	}
	start := 0
	if limit > 0 && len(entries) > limit {
		start = len(entries) - limit
	}
	for _, e := range entries[start:] {
		fmt.Fprintf(&b, "  %s %-4s %s @ %s  P&L %s  %s\n",
			e.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			strings.ToUpper(string(e.Action)),
			decimal.NewFromFloat(e.Amount).Round(8).String(),
			money(e.Price),
			money(e.Profit),
			e.Reason)
	}
	if start > 0 {
		fmt.Fprintf(&b, "  (%d earlier trades)\n", start)
	}
	return b.String()
}

func renderBatch(title string, results []models.BatchResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")
	ok := 0
	for _, r := range results {
		if r.OK {
			ok++
			fmt.Fprintf(&b, "  %s %s: %s\n", okStyle.Render("ok"), r.Agent, r.Message)
		} else {
			fmt.Fprintf(&b, "  %s %s: %s\n", errorStyle.Render("failed"), r.Agent, r.Message)
		}
	}
	fmt.Fprintf(&b, "\n%d/%d succeeded\n", ok, len(results))
	return b.String()
}

func renderOverrides(name string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(titleStyle.Render(name+" overrides") + "\n\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s = %s\n", k, values[k])
	}
	return b.String()
}
