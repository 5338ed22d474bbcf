package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/venturemesh/identity/internal/identity/service"
	"github.com/venturemesh/identity/internal/identity/store"
	"github.com/venturemesh/identity/pkg/httpx"
	"github.com/venturemesh/identity/pkg/jwtx"
	"github.com/venturemesh/identity/pkg/slogx"

	_ "github.com/venturemesh/identity/api/identity" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	PersonaService    *service.PersonaService
	RuleService       *service.RuleService
	OnboardingService *service.OnboardingService
	SwitchService     *service.SwitchService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
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
	r.registerPersonas()
	r.registerSwitching()
	r.registerRules()
	r.registerOnboarding()
	r.registerHistory()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			VentureMesh Identity Service API
//	@version		0.1.0
//	@description	Multi-persona identity and context-switching engine. Users hold several
//	@description	professional personas; at most one is active at a time, and context rules
//	@description	can switch the active persona automatically based on runtime signals.
//
//	@contact.name				VentureMesh Platform Team
//	@contact.url				https://github.com/venturemesh/identity
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps a handler with the standard authenticated chain: JWT
// verification, a scope check and per-user rate limiting.
func (r *Router) secured(h http.Handler, scope string, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(scope),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerPersonas() {
	h := &PersonasHandler{PersonaService: r.PersonaService}

	r.Mux.Handle("GET /v1/personas",
		r.secured(http.HandlerFunc(h.HandleList), "identity:read", httpx.LenientLimit))
	r.Mux.Handle("GET /v1/personas/{id}",
		r.secured(http.HandlerFunc(h.HandleGet), "identity:read", httpx.LenientLimit))

	// Creation and deletion churn personas; keep them on the strict limit.
	r.Mux.Handle("POST /v1/personas",
		r.secured(http.HandlerFunc(h.HandleCreate), "identity:write", httpx.StrictLimit))
	r.Mux.Handle("PATCH /v1/personas/{id}",
		r.secured(http.HandlerFunc(h.HandleUpdate), "identity:write", httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/personas/{id}",
		r.secured(http.HandlerFunc(h.HandleDelete), "identity:write", httpx.StrictLimit))
}

func (r *Router) registerSwitching() {
	active := &ActivePersonaHandler{
		PersonaService: r.PersonaService,
		SwitchService:  r.SwitchService,
	}
	ctxSwitch := &ContextSwitchHandler{SwitchService: r.SwitchService}

	// The literal "active" segment takes precedence over the {id} pattern.
	r.Mux.Handle("GET /v1/personas/active",
		r.secured(http.HandlerFunc(active.HandleGet), "identity:read", httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/personas/active",
		r.secured(http.HandlerFunc(active.HandleSwitch), "identity:write", httpx.StrictLimit))

	// Context signals arrive on navigation, so they get the moderate limit
	// rather than the strict one.
	r.Mux.Handle("POST /v1/context/switch",
		r.secured(http.HandlerFunc(ctxSwitch.HandleSignal), "identity:write", httpx.ModerateLimit))
}

func (r *Router) registerRules() {
	h := &RulesHandler{RuleService: r.RuleService}

	r.Mux.Handle("GET /v1/rules",
		r.secured(http.HandlerFunc(h.HandleList), "identity:read", httpx.LenientLimit))
	r.Mux.Handle("POST /v1/rules",
		r.secured(http.HandlerFunc(h.HandleCreate), "identity:write", httpx.ModerateLimit))
	r.Mux.Handle("PATCH /v1/rules/{id}/priority",
		r.secured(http.HandlerFunc(h.HandleUpdatePriority), "identity:write", httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/rules/{id}",
		r.secured(http.HandlerFunc(h.HandleDelete), "identity:write", httpx.ModerateLimit))
}

func (r *Router) registerOnboarding() {
	h := &OnboardingHandler{OnboardingService: r.OnboardingService}

	r.Mux.Handle("GET /v1/onboarding/next",
		r.secured(http.HandlerFunc(h.HandleCheck), "identity:read", httpx.LenientLimit))
	r.Mux.Handle("GET /v1/onboarding/{personaID}",
		r.secured(http.HandlerFunc(h.HandleState), "identity:read", httpx.LenientLimit))
	r.Mux.Handle("POST /v1/onboarding/{personaID}/advance",
		r.secured(http.HandlerFunc(h.HandleAdvance), "identity:write", httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/onboarding/{personaID}/form",
		r.secured(http.HandlerFunc(h.HandleForm), "identity:write", httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/onboarding/{personaID}/complete",
		r.secured(http.HandlerFunc(h.HandleComplete), "identity:write", httpx.ModerateLimit))
}

func (r *Router) registerHistory() {
	h := &HistoryHandler{SwitchService: r.SwitchService}

	r.Mux.Handle("GET /v1/history",
		r.secured(http.HandlerFunc(h.HandleList), "identity:read", httpx.LenientLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
