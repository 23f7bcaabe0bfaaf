// Package analytics computes productivity summaries directly from the log
// store, independent of the conversational pipeline.
package analytics

import (
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/trafficlens/trafficlens/internal/logstore"
	"github.com/trafficlens/trafficlens/internal/report"
)

var productiveCategories = []string{"Business", "Development"}
var unproductiveCategories = []string{"Social.Media", "Game", "Adult"}

// Analytics runs aggregate queries against an opened log store.
type Analytics struct {
	store *logstore.Store
}

// New builds an analytics facade over the store.
func New(store *logstore.Store) *Analytics {
	return &Analytics{store: store}
}

// ProductivityReport summarizes productive versus non-productive time.
// Durations are in milliseconds.
type ProductivityReport struct {
	ProductiveMs      float64
	UnproductiveMs    float64
	ProductivityRatio float64
	// WorstHours lists the three hours of day with the most non-productive
	// time, worst first.
	WorstHours         []HourUsage
	TotalUsers         int
	TopUnproductiveCat string
}

// HourUsage is non-productive time accumulated in one hour of the day.
type HourUsage struct {
	Hour       int
	DurationMs float64
}

// Options filters a productivity analysis.
type Options struct {
	User     string
	DateFrom string
	DateTo   string
}

// ProductivityPatterns aggregates usage into a productivity report.
func (a *Analytics) ProductivityPatterns(opts Options) (*ProductivityReport, error) {
	query := `
	SELECT srcname, appcat, strftime('%H', time) AS hour, SUM(duration) AS total_ms
	FROM logs
	WHERE 1=1`
	var params []any
	if opts.User != "" {
		query += " AND srcname LIKE ?"
		params = append(params, "%"+opts.User+"%")
	}
	if opts.DateFrom != "" {
		query += " AND date >= ?"
		params = append(params, opts.DateFrom)
	}
	if opts.DateTo != "" {
		query += " AND date <= ?"
		params = append(params, opts.DateTo)
	}
	query += " GROUP BY srcname, appcat, hour"

	rows, err := a.store.Conn().Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("productivity query: %w", err)
	}
	defer rows.Close()

	rep := &ProductivityReport{}
	hourTotals := map[int]float64{}
	catTotals := map[string]float64{}
	users := map[string]bool{}

	for rows.Next() {
		var name, cat sql.NullString
		var hour sql.NullString
		var ms sql.NullFloat64
		if err := rows.Scan(&name, &cat, &hour, &ms); err != nil {
			return nil, fmt.Errorf("scan productivity row: %w", err)
		}
		users[name.String] = true
		switch {
		case contains(productiveCategories, cat.String):
			rep.ProductiveMs += ms.Float64
		case contains(unproductiveCategories, cat.String):
			rep.UnproductiveMs += ms.Float64
			catTotals[cat.String] += ms.Float64
			var h int
			fmt.Sscanf(hour.String, "%d", &h)
			hourTotals[h] += ms.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate productivity rows: %w", err)
	}

	rep.TotalUsers = len(users)
	if total := rep.ProductiveMs + rep.UnproductiveMs; total > 0 {
		rep.ProductivityRatio = rep.ProductiveMs / total
	}
	for h, ms := range hourTotals {
		rep.WorstHours = append(rep.WorstHours, HourUsage{Hour: h, DurationMs: ms})
	}
	sort.Slice(rep.WorstHours, func(i, j int) bool {
		return rep.WorstHours[i].DurationMs > rep.WorstHours[j].DurationMs
	})
	if len(rep.WorstHours) > 3 {
		rep.WorstHours = rep.WorstHours[:3]
	}
	var best float64
	for cat, ms := range catTotals {
		if ms > best {
			best = ms
			rep.TopUnproductiveCat = cat
		}
	}
	return rep, nil
}

var (
	macPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}$`)
	ipPattern  = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
)

// UserSummary looks up a user by name, source IP or MAC address and renders
// their top applications by time spent.
func (a *Analytics) UserSummary(identifier string) (string, error) {
	condition := "srcname LIKE ?"
	param := "%" + identifier + "%"
	switch {
	case macPattern.MatchString(identifier):
		condition = "mastersrcmac = ?"
		param = identifier
	case ipPattern.MatchString(identifier):
		condition = "srcip = ?"
		param = identifier
	}

	rows, err := a.store.Conn().Query(`
	SELECT srcname, srcip, mastersrcmac, appcat, app,
	       SUM(duration) AS total_ms, COUNT(*) AS sessions
	FROM logs
	WHERE `+condition+`
	GROUP BY srcname, srcip, mastersrcmac, appcat, app
	ORDER BY total_ms DESC`, param)
	if err != nil {
		return "", fmt.Errorf("user summary query: %w", err)
	}
	defer rows.Close()

	type appRow struct {
		name, ip, mac, cat, app string
		ms                      float64
		sessions                int
	}
	var results []appRow
	for rows.Next() {
		var r appRow
		var name, ip, mac, cat, app sql.NullString
		var ms sql.NullFloat64
		if err := rows.Scan(&name, &ip, &mac, &cat, &app, &ms, &r.sessions); err != nil {
			return "", fmt.Errorf("scan user row: %w", err)
		}
		r.name, r.ip, r.mac, r.cat, r.app, r.ms = name.String, ip.String, mac.String, cat.String, app.String, ms.Float64
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate user rows: %w", err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("no activity found for %q", identifier)
	}

	var b strings.Builder
	first := results[0]
	fmt.Fprintf(&b, "User: %s (IP: %s, MAC: %s)\n\nTop applications:\n", first.name, first.ip, first.mac)
	limit := len(results)
	if limit > 5 {
		limit = 5
	}
	for _, r := range results[:limit] {
		fmt.Fprintf(&b, "- %s (%s): %s across %d sessions\n",
			r.app, r.cat, report.FormatDuration(r.ms), r.sessions)
	}
	return b.String(), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
