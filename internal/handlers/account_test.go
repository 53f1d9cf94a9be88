package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Rehtse11/Essence-Luxe/internal/models"
	"github.com/Rehtse11/Essence-Luxe/internal/store"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func seedUser(t *testing.T, s *store.Store, email, password string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{FirstName: "Iris", LastName: "Vetiver", Email: email, Password: string(hashed)}
	require.NoError(t, s.CreateUser(u))
	return u
}

// loginCookies mints the cookie a logged-in browser would hold.
func loginCookies(t *testing.T, ss *sessions.CookieStore, u *models.User) []*http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	session, err := ss.Get(req, SessionName)
	require.NoError(t, err)
	session.Values["user_id"] = u.ID
	session.Values["user_name"] = u.FullName()
	session.Values["role"] = u.Role
	require.NoError(t, session.Save(req, w))
	return w.Result().Cookies()
}

func requireSessionCookie(t *testing.T, res *http.Response) {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == SessionName {
			return
		}
	}
	t.Fatal("redirect response must carry the session cookie")
}

// nextSession decodes the session the client would present on its next request.
func nextSession(t *testing.T, ss *sessions.CookieStore, cookies []*http.Cookie) *sessions.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	session, err := ss.Get(req, SessionName)
	require.NoError(t, err)
	return session
}

func TestUpdateProfileRefreshesSessionName(t *testing.T) {
	s := newTestStore(t)
	ss := newSessionStore()
	h := &AccountHandler{Store: s, Templates: NewTemplateCache(), SessionStore: ss}
	u := seedUser(t, s, "iris@example.com", "Oldpass1")

	form := url.Values{
		"first_name": {"Rose"},
		"last_name":  {"Oud"},
		"city":       {"Grasse"},
	}
	w := httptest.NewRecorder()
	h.UpdateProfile(w, postForm("/account/profile", form, loginCookies(t, ss, u)))

	res := w.Result()
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/account", res.Header.Get("Location"))
	requireSessionCookie(t, res)

	// The redirect itself must carry the renamed session and the flash.
	session := nextSession(t, ss, res.Cookies())
	assert.Equal(t, "Rose Oud", sessionUserName(session))
	flashes := GetFlash(session)
	require.Len(t, flashes, 1)
	assert.Equal(t, "success", flashes[0].Type)

	updated, err := s.GetUserByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rose", updated.FirstName)
	assert.Equal(t, "Grasse", updated.City)
}

func TestChangePasswordFlashSurvivesRedirect(t *testing.T) {
	s := newTestStore(t)
	ss := newSessionStore()
	h := &AccountHandler{Store: s, Templates: NewTemplateCache(), SessionStore: ss}
	u := seedUser(t, s, "iris@example.com", "Oldpass1")
	cookies := loginCookies(t, ss, u)

	// Wrong current password: the error flash must reach the next request.
	w := httptest.NewRecorder()
	h.ChangePassword(w, postForm("/account/password", url.Values{
		"current_password": {"not-it"},
		"new_password":     {"Newpass12"},
		"confirm_password": {"Newpass12"},
	}, cookies))

	res := w.Result()
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	requireSessionCookie(t, res)
	flashes := GetFlash(nextSession(t, ss, res.Cookies()))
	require.Len(t, flashes, 1)
	assert.Equal(t, "error", flashes[0].Type)

	// Correct current password: the hash actually changes.
	w = httptest.NewRecorder()
	h.ChangePassword(w, postForm("/account/password", url.Values{
		"current_password": {"Oldpass1"},
		"new_password":     {"Newpass12"},
		"confirm_password": {"Newpass12"},
	}, cookies))

	requireSessionCookie(t, w.Result())
	updated, err := s.GetUserByID(u.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("Newpass12")))
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	s := newTestStore(t)
	ss := newSessionStore()
	h := &AdminHandler{Store: s, Templates: NewTemplateCache(), SessionStore: ss}

	w := httptest.NewRecorder()
	h.UpdateOrderStatus(w, postForm("/admin/orders/update", url.Values{
		"id":     {"1"},
		"status": {"teleported"},
	}, nil))

	res := w.Result()
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/admin/orders", res.Header.Get("Location"))
	requireSessionCookie(t, res)
	flashes := GetFlash(nextSession(t, ss, res.Cookies()))
	require.Len(t, flashes, 1)
	assert.Equal(t, "error", flashes[0].Type)
}
