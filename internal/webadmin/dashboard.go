// ABOUTME: Dashboard page handlers: counters, the activity feed partial and chart data
// ABOUTME: Chart data is served as JSON and drawn client-side

package webadmin

import (
	"encoding/json"
	"net/http"

	"github.com/walidgreens2005-svg/my-manager-de-Walid-Haiti-et-Imane-Hammouda/internal/dashboard"
)

// handleDashboard renders the dashboard
func (a *Admin) handleDashboard(w http.ResponseWriter, r *http.Request) {
	lang := a.language(r)
	base := a.base(r, a.deps.Bundle.T(lang, "dashboard.title"), "dashboard")

	a.render(w, http.StatusOK, "dashboard", dashboardData{
		pageData: base,
		Summary:  a.deps.Dashboard.Summary(r.Context(), lang),
	})
}

// handleActivity renders the activity feed for htmx polling
func (a *Admin) handleActivity(w http.ResponseWriter, r *http.Request) {
	lang := a.language(r)
	a.renderPartial(w, "dashboard", "activity", dashboardData{
		pageData: a.base(r, "", "dashboard"),
		Summary:  dashboard.Summary{Activity: a.deps.Dashboard.Recent(r.Context(), lang)},
	})
}

// handleCharts returns the chart series as JSON
func (a *Admin) handleCharts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(a.deps.Dashboard.Charts(r.Context())); err != nil {
		a.logger.Error("failed to encode charts", "error", err)
	}
}
