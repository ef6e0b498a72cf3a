package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cliptube/cliptube/internal/accounts/domain"
	"github.com/cliptube/cliptube/internal/accounts/service"
	"github.com/cliptube/cliptube/pkg/httpx"
)

// RefreshTokenCookie mirrors httpx.AccessTokenCookie for the refresh leg.
const RefreshTokenCookie = "refreshToken"

// tokenResponse is the wire shape of a token pair. expires_in is seconds,
// matching what OAuth-style clients expect.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func newTokenResponse(pair domain.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}

// setSessionCookies installs the token pair as HttpOnly cookies so browser
// clients stay authenticated without touching the tokens from script.
func setSessionCookies(w http.ResponseWriter, pair domain.TokenPair, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(pair.ExpiresIn.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{httpx.AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// LoginHandler serves POST /v1/sessions. Accepts a JSON body with a
// username or email identifier plus the password and opens a session.
type LoginHandler struct {
	Sessions     *service.SessionService
	CookieSecure bool
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Identifier string `json:"identifier"`
		Username   string `json:"username"`
		Email      string `json:"email"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Clients may send identifier, username, or email; first non-blank wins
	identifier := body.Identifier
	if identifier == "" {
		identifier = body.Username
	}
	if identifier == "" {
		identifier = body.Email
	}

	user, pair, err := h.Sessions.Login(r.Context(), identifier, body.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setSessionCookies(w, pair, h.CookieSecure)
	httpx.WriteSuccess(w, http.StatusOK, map[string]any{
		"user":   user,
		"tokens": newTokenResponse(pair),
	}, "logged in")
}

// LogoutHandler serves DELETE /v1/sessions. Requires authentication and
// closes the caller's session.
type LogoutHandler struct {
	Sessions     *service.SessionService
	CookieSecure bool
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())

	if err := h.Sessions.Logout(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	clearSessionCookies(w, h.CookieSecure)
	httpx.WriteSuccess(w, http.StatusOK, nil, "logged out")
}

// RefreshHandler serves POST /v1/sessions/refresh. The refresh token comes
// from the JSON body or, for browser clients, the refresh cookie.
type RefreshHandler struct {
	Sessions     *service.SessionService
	CookieSecure bool
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	// Body is optional when the cookie is present
	_ = json.NewDecoder(r.Body).Decode(&body)

	token := body.RefreshToken
	if token == "" {
		if c, err := r.Cookie(RefreshTokenCookie); err == nil {
			token = c.Value
		}
	}

	pair, err := h.Sessions.Refresh(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setSessionCookies(w, pair, h.CookieSecure)
	httpx.WriteSuccess(w, http.StatusOK, map[string]any{
		"tokens": newTokenResponse(pair),
	}, "session refreshed")
}
