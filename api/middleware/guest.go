package middleware

import (
	"net/http"
	"strings"

	"github.com/keepsakeshop/keepsake-backend/pkg/config"
)

// GuestCookie reads the guest cart cookie, if present, and seeds the request
// context with its token. Minting a fresh token is left to the cart layer so
// GET requests from brand-new visitors do not allocate carts.
func GuestCookie(cfg config.GuestConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(cfg.CookieName); err == nil {
				if token := strings.TrimSpace(cookie.Value); token != "" {
					r = r.WithContext(WithGuestToken(r.Context(), token))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetGuestCookie writes the httpOnly guest cookie used to re-identify
// anonymous carts across visits.
func SetGuestCookie(w http.ResponseWriter, cfg config.GuestConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.CookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearGuestCookie expires the guest cookie after a guest cart was merged
// into a user cart.
func ClearGuestCookie(w http.ResponseWriter, cfg config.GuestConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
