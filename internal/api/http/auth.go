package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

const (
	RealmCustomer   = "customer"
	RealmRestaurant = "restaurant"

	customerCookie   = "session"
	restaurantCookie = "restaurant_session"
)

func cookieName(realm string) string {
	if realm == RealmRestaurant {
		return restaurantCookie
	}
	return customerCookie
}

func newSessionToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

func setSessionCookie(w http.ResponseWriter, realm, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(realm),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, realm string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(realm),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// requireSession resolves the caller's account ID for the given realm. The ID
// is handed to the wrapped handler explicitly rather than smuggled through
// the request context.
func (h *Handler) requireSession(realm string, next func(w http.ResponseWriter, r *http.Request, accountID int)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(cookieName(realm))
		if err != nil || cookie.Value == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		accountID, err := h.Sessions.GetSession(r.Context(), realm, cookie.Value)
		if err != nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next(w, r, accountID)
	}
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, realm string, accountID int) error {
	token := newSessionToken()
	if err := h.Sessions.PutSession(r.Context(), realm, token, accountID); err != nil {
		return err
	}
	setSessionCookie(w, realm, token)
	return nil
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request, realm string) {
	if cookie, err := r.Cookie(cookieName(realm)); err == nil && cookie.Value != "" {
		_ = h.Sessions.DeleteSession(r.Context(), realm, cookie.Value)
	}
	clearSessionCookie(w, realm)
}
