package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Rehtse11/Essence-Luxe/internal/cart"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"github.com/gorilla/sessions"
)

// SessionName is the single cookie session carrying the user identity, the
// cart map, and flash messages. The cookie holds only this opaque state,
// never credentials.
const SessionName = "essence-session"

const rememberCookie = "remember_token"

func sessionUserID(session *sessions.Session) int64 {
	if id, ok := session.Values["user_id"].(int64); ok {
		return id
	}
	return 0
}

func sessionRole(session *sessions.Session) string {
	if role, ok := session.Values["role"].(string); ok {
		return role
	}
	return ""
}

func sessionUserName(session *sessions.Session) string {
	if name, ok := session.Values["user_name"].(string); ok {
		return name
	}
	return ""
}

func getCart(session *sessions.Session) cart.Cart {
	if c, ok := session.Values["cart"].(cart.Cart); ok {
		return c
	}
	return cart.Cart{}
}

func setCart(session *sessions.Session, c cart.Cart) {
	session.Values["cart"] = c
}

// baseData builds the fields every template expects: nav state and flashes.
// Reading flashes clears them, so the caller must save the session afterward.
func baseData(session *sessions.Session) map[string]interface{} {
	return map[string]interface{}{
		"Flashes":    GetFlash(session),
		"CartCount":  getCart(session).Count(),
		"IsLoggedIn": sessionUserID(session) != 0,
		"IsAdmin":    sessionRole(session) == "admin",
		"UserName":   sessionUserName(session),
	}
}

// render executes a cached template, 500ing if it is missing from the cache.
func render(w http.ResponseWriter, templates *TemplateCache, name string, data map[string]interface{}) {
	tmpl := templates.Get(name)
	if tmpl == nil {
		slog.Error("Template not found", "name", name)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, data); err != nil {
		slog.Error("Failed to render template", "name", name, "error", err)
	}
}

// RequireLogin redirects anonymous visitors to the login page, remembering
// where they were headed.
func RequireLogin(sessionStore *sessions.CookieStore, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessionStore.Get(r, SessionName)
		if sessionUserID(session) == 0 {
			session.Values["redirect_after_login"] = r.URL.RequestURI()
			session.AddFlash(FlashMessage{Type: "error", Message: "Please log in to continue."})
			session.Save(r, w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// RequireAdmin gates the admin area on the session role.
func RequireAdmin(sessionStore *sessions.CookieStore, next http.HandlerFunc) http.HandlerFunc {
	return RequireLogin(sessionStore, func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessionStore.Get(r, SessionName)
		if sessionRole(session) != "admin" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

// RememberMiddleware restores a session from the remember-me cookie when the
// session itself has expired. Invalid or expired tokens clear the cookie.
func RememberMiddleware(sessionStore *sessions.CookieStore, db *store.Store, carts *cart.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, _ := sessionStore.Get(r, SessionName)
			if sessionUserID(session) != 0 {
				next.ServeHTTP(w, r)
				return
			}
			cookie, err := r.Cookie(rememberCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := db.GetUserIDByRememberToken(cookie.Value)
			if err != nil {
				http.SetCookie(w, &http.Cookie{Name: rememberCookie, Value: "", Path: "/", MaxAge: -1})
				next.ServeHTTP(w, r)
				return
			}
			user, err := db.GetUserByID(userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			session.Values["user_id"] = user.ID
			session.Values["user_name"] = user.FullName()
			session.Values["role"] = user.Role
			if c, err := carts.LoadFromDB(user.ID); err == nil {
				setCart(session, c)
			}
			if err := session.Save(r, w); err != nil {
				slog.Error("Failed to save restored session", "error", err)
			}
			slog.Info("Session restored from remember token", "user_id", user.ID)
			next.ServeHTTP(w, r)
		})
	}
}
