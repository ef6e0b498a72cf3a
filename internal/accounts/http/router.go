package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cliptube/cliptube/internal/accounts/media"
	"github.com/cliptube/cliptube/internal/accounts/service"
	"github.com/cliptube/cliptube/internal/accounts/store"
	"github.com/cliptube/cliptube/pkg/httpx"
	"github.com/cliptube/cliptube/pkg/jwtx"
	"github.com/cliptube/cliptube/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	SessionService *service.SessionService
	UserService    *service.UserService
	Uploader       media.Uploader

	// CookieSecure marks session cookies Secure; enabled outside dev.
	CookieSecure bool
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSessions()
	r.registerUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSessions() {
	login := &LoginHandler{
		Sessions:     r.SessionService,
		CookieSecure: r.CookieSecure,
	}

	// Credential endpoints get the strict limit to slow brute force
	r.Mux.Handle("POST /v1/sessions",
		httpx.Chain(login,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	logout := &LogoutHandler{
		Sessions:     r.SessionService,
		CookieSecure: r.CookieSecure,
	}
	r.Mux.Handle("DELETE /v1/sessions",
		httpx.Chain(logout,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	refresh := &RefreshHandler{
		Sessions:     r.SessionService,
		CookieSecure: r.CookieSecure,
	}
	r.Mux.Handle("POST /v1/sessions/refresh",
		httpx.Chain(refresh,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	register := &RegisterHandler{
		Sessions: r.SessionService,
		Uploader: r.Uploader,
	}
	r.Mux.Handle("POST /v1/users/register",
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	me := &MeHandler{Users: r.UserService}
	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(me,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	password := &ChangePasswordHandler{Users: r.UserService}
	r.Mux.Handle("POST /v1/users/me/password",
		httpx.Chain(password,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	avatar := &MediaUpdateHandler{
		Users:    r.UserService,
		Uploader: r.Uploader,
		Kind:     mediaKindAvatar,
	}
	r.Mux.Handle("PUT /v1/users/me/avatar",
		httpx.Chain(avatar,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	cover := &MediaUpdateHandler{
		Users:    r.UserService,
		Uploader: r.Uploader,
		Kind:     mediaKindCover,
	}
	r.Mux.Handle("PUT /v1/users/me/cover",
		httpx.Chain(cover,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	history := &WatchHistoryHandler{Users: r.UserService}
	r.Mux.Handle("GET /v1/users/me/history",
		httpx.Chain(history,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/users/me/history",
		httpx.Chain(history,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
