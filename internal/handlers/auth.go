package handlers

import (
	"log/slog"
	"net/http"
	"regexp"

	"github.com/Rehtse11/Essence-Luxe/internal/cart"
	"github.com/Rehtse11/Essence-Luxe/internal/mail"
	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	Store        *store.Store
	Carts        *cart.Manager
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
	Mailer       mail.Mailer
	SiteName     string
	SiteURL      string
}

func (h *AuthHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)
	if sessionUserID(session) != 0 {
		http.Redirect(w, r, "/account", http.StatusSeeOther)
		return
	}
	data := baseData(session)
	data["CsrfField"] = csrf.TemplateField(r)
	session.Save(r, w)
	render(w, h.Templates, "login.html", data)
}

func (h *AuthHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)

	email := r.FormValue("email")
	password := r.FormValue("password")
	remember := r.FormValue("remember") != ""

	fail := func(msg string) {
		session.AddFlash(FlashMessage{Type: "error", Message: msg})
		session.Save(r, w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}

	if email == "" || password == "" {
		fail("Email and password are required")
		return
	}
	if !isValidEmail(email) {
		fail("Invalid email format")
		return
	}

	user, err := h.Store.GetUserByEmail(email)
	if err != nil {
		slog.Error("Login lookup failed", "error", err)
		fail("Internal Server Error")
		return
	}
	// Same generic message for unknown email and wrong password.
	if user == nil {
		fail("Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		fail("Invalid email or password")
		return
	}

	session.Values["user_id"] = user.ID
	session.Values["user_name"] = user.FullName()
	session.Values["role"] = user.Role

	if err := h.Store.TouchLastLogin(user.ID); err != nil {
		slog.Warn("Failed to update last login", "user_id", user.ID, "error", err)
	}

	// The persisted cart replaces whatever the anonymous session held.
	if c, err := h.Carts.LoadFromDB(user.ID); err != nil {
		slog.Warn("Failed to load cart from database", "user_id", user.ID, "error", err)
	} else {
		setCart(session, c)
	}

	if remember {
		token := uuid.NewString()
		if err := h.Store.CreateRememberToken(user.ID, token); err != nil {
			slog.Warn("Failed to store remember token", "error", err)
		} else {
			http.SetCookie(w, &http.Cookie{
				Name:     rememberCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   86400 * 30,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		if err := h.Store.PurgeExpiredRememberTokens(); err != nil {
			slog.Warn("Failed to purge expired remember tokens", "error", err)
		}
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Welcome back, " + user.FirstName + "!"})

	redirect := "/account"
	if target, ok := session.Values["redirect_after_login"].(string); ok && target != "" {
		redirect = target
		delete(session.Values, "redirect_after_login")
	}

	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func (h *AuthHandler) RegisterGet(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)
	if sessionUserID(session) != 0 {
		http.Redirect(w, r, "/account", http.StatusSeeOther)
		return
	}
	data := baseData(session)
	data["CsrfField"] = csrf.TemplateField(r)
	data["Values"] = map[string]string{}
	data["Errors"] = map[string]string{}
	session.Save(r, w)
	render(w, h.Templates, "register.html", data)
}

func (h *AuthHandler) RegisterPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid form data."})
		session.Save(r, w)
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	values := map[string]string{
		"first_name": r.FormValue("first_name"),
		"last_name":  r.FormValue("last_name"),
		"email":      r.FormValue("email"),
		"phone":      r.FormValue("phone"),
	}
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")
	agreed := r.FormValue("agree_terms") != ""

	fieldErrors := make(map[string]string)
	if len(values["first_name"]) < 2 {
		fieldErrors["first_name"] = "First name must be at least 2 characters"
	}
	if len(values["last_name"]) < 2 {
		fieldErrors["last_name"] = "Last name must be at least 2 characters"
	}
	if values["email"] == "" {
		fieldErrors["email"] = "Email is required"
	} else if !isValidEmail(values["email"]) {
		fieldErrors["email"] = "Invalid email format"
	} else if taken, err := h.Store.EmailTaken(values["email"]); err != nil {
		slog.Error("Registration email check failed", "error", err)
		fieldErrors["email"] = "Registration failed. Please try again."
	} else if taken {
		fieldErrors["email"] = "Email already registered"
	}
	if msg := passwordPolicyError(password); msg != "" {
		fieldErrors["password"] = msg
	} else if password != confirm {
		fieldErrors["confirm_password"] = "Passwords do not match"
	}
	if !agreed {
		fieldErrors["agree_terms"] = "You must agree to the terms and conditions"
	}

	if len(fieldErrors) > 0 {
		data := baseData(session)
		data["CsrfField"] = csrf.TemplateField(r)
		data["Values"] = values
		data["Errors"] = fieldErrors
		session.Save(r, w)
		render(w, h.Templates, "register.html", data)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		http.Error(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		FirstName: values["first_name"],
		LastName:  values["last_name"],
		Email:     values["email"],
		Phone:     values["phone"],
		Password:  string(hashed),
		Role:      "customer",
	}
	if err := h.Store.CreateUser(user); err != nil {
		slog.Error("Failed to create user", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Registration failed. Please try again."})
		session.Save(r, w)
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	// Auto login
	session.Values["user_id"] = user.ID
	session.Values["user_name"] = user.FullName()
	session.Values["role"] = user.Role

	mail.SendAsync(h.Mailer, user.Email, "Welcome to "+h.SiteName,
		"<h2>Welcome to "+h.SiteName+"!</h2>"+
			"<p>Thank you for creating an account, "+user.FirstName+".</p>"+
			"<p>Start exploring our collection of luxury perfumes today: "+
			`<a href="`+h.SiteURL+`/shop">Shop Now</a></p>`)

	session.AddFlash(FlashMessage{Type: "success", Message: "Welcome to " + h.SiteName + "! Your account has been created successfully."})
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, SessionName)

	if cookie, err := r.Cookie(rememberCookie); err == nil && cookie.Value != "" {
		if err := h.Store.DeleteRememberToken(cookie.Value); err != nil {
			slog.Warn("Failed to delete remember token", "error", err)
		}
		http.SetCookie(w, &http.Cookie{Name: rememberCookie, Value: "", Path: "/", MaxAge: -1})
	}

	for key := range session.Values {
		delete(session.Values, key)
	}
	session.AddFlash(FlashMessage{Type: "success", Message: "You have been logged out successfully."})
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// passwordPolicyError enforces the registration password rules; empty string
// means the password is acceptable.
func passwordPolicyError(password string) string {
	if password == "" {
		return "Password is required"
	}
	if len(password) < 8 {
		return "Password must be at least 8 characters"
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	switch {
	case !hasUpper:
		return "Password must contain at least one uppercase letter"
	case !hasLower:
		return "Password must contain at least one lowercase letter"
	case !hasDigit:
		return "Password must contain at least one number"
	}
	return ""
}
