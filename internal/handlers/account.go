package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

type AccountHandler struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

// Show renders the account page: dashboard stats, order history, profile and
// settings tabs. Routed behind RequireLogin.
func (h *AccountHandler) Show(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)
	userID := sessionUserID(session)

	user, err := h.Store.GetUserByID(userID)
	if err != nil {
		http.Error(w, "Error fetching account", http.StatusInternalServerError)
		return
	}
	orders, err := h.Store.GetOrdersByUser(userID, 10)
	if err != nil {
		http.Error(w, "Error fetching orders", http.StatusInternalServerError)
		return
	}
	stats, err := h.Store.GetUserOrderStats(userID)
	if err != nil {
		http.Error(w, "Error fetching order stats", http.StatusInternalServerError)
		return
	}

	tab := r.URL.Query().Get("tab")
	if tab == "" {
		tab = "dashboard"
	}

	data := baseData(session)
	data["User"] = user
	data["Orders"] = orders
	data["Stats"] = stats
	data["ActiveTab"] = tab
	data["CsrfField"] = csrf.TemplateField(r)
	session.Save(r, w)
	render(w, h.Templates, "account.html", data)
}

// UpdateProfile handles the profile tab form.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)
	userID := sessionUserID(session)

	user, err := h.Store.GetUserByID(userID)
	if err != nil {
		http.Error(w, "Error fetching account", http.StatusInternalServerError)
		return
	}

	firstName := r.FormValue("first_name")
	lastName := r.FormValue("last_name")
	if firstName == "" || lastName == "" {
		session.AddFlash(FlashMessage{Type: "error", Message: "First and last name are required"})
		session.Save(r, w)
		http.Redirect(w, r, "/account?tab=profile", http.StatusSeeOther)
		return
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.Phone = r.FormValue("phone")
	user.Address = r.FormValue("address")
	user.City = r.FormValue("city")
	user.State = r.FormValue("state")
	user.ZipCode = r.FormValue("zip_code")
	user.Country = r.FormValue("country")

	if err := h.Store.UpdateUserProfile(user); err != nil {
		slog.Error("Failed to update profile", "user_id", userID, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to update profile"})
		session.Save(r, w)
		http.Redirect(w, r, "/account?tab=profile", http.StatusSeeOther)
		return
	}

	session.Values["user_name"] = user.FullName()
	session.AddFlash(FlashMessage{Type: "success", Message: "Profile updated successfully"})
	session.Save(r, w)
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}

// ChangePassword verifies the current password before setting a new one.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)
	userID := sessionUserID(session)

	user, err := h.Store.GetUserByID(userID)
	if err != nil {
		http.Error(w, "Error fetching account", http.StatusInternalServerError)
		return
	}

	current := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	fail := func(msg string) {
		session.AddFlash(FlashMessage{Type: "error", Message: msg})
		session.Save(r, w)
		http.Redirect(w, r, "/account?tab=settings", http.StatusSeeOther)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		fail("Current password is incorrect")
		return
	}
	if msg := passwordPolicyError(newPassword); msg != "" {
		fail(msg)
		return
	}
	if newPassword != confirm {
		fail("New password and confirmation do not match")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		http.Error(w, "Failed to change password", http.StatusInternalServerError)
		return
	}
	if err := h.Store.UpdateUserPassword(userID, string(hashed)); err != nil {
		slog.Error("Failed to change password", "user_id", userID, "error", err)
		fail("Failed to change password")
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Password changed successfully"})
	session.Save(r, w)
	http.Redirect(w, r, "/account?tab=settings", http.StatusSeeOther)
}
