package auth

import (
	"net/http"
	"time"

	"github.com/BradenHooton/frontdesk/internal/models"
)

const SessionCookieName = "frontdesk_session"

type CookieConfig struct {
	Domain   string // empty = current host only
	Secure   bool
	SameSite string // "strict", "lax" or "none"
}

// SetSessionCookie stores the session token. Only remember-me sessions get a
// persistent expiry; the rest die with the browser session.
func SetSessionCookie(w http.ResponseWriter, token string, claims *models.SessionClaims, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   config.Domain,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: parseSameSite(config.SameSite),
	}

	if claims.RememberMe && claims.ExpiresAt != nil {
		cookie.Expires = claims.ExpiresAt.Time
		cookie.MaxAge = int(time.Until(claims.ExpiresAt.Time).Seconds())
	}

	http.SetCookie(w, cookie)
}

func ClearSessionCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: parseSameSite(config.SameSite),
	})
}

// GetSessionCookie returns the raw token, or "" when no cookie was sent.
func GetSessionCookie(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
