package handlers

import (
	"net/http"

	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

// AdminHandler serves the back office: dashboard stats, order management, and
// product management. Every route is wrapped in RequireAdmin.
type AdminHandler struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
	UploadsDir   string
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetDashboardStats()
	if err != nil {
		http.Error(w, "Error fetching stats", http.StatusInternalServerError)
		return
	}

	session, _ := h.SessionStore.Get(r, SessionName)
	data := baseData(session)
	data["Stats"] = stats
	data["CsrfField"] = csrf.TemplateField(r)
	session.Save(r, w)
	render(w, h.Templates, "admin_dashboard.html", data)
}
