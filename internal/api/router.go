package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nirvachan/server/internal/api/handlers"
	"github.com/nirvachan/server/internal/api/middleware"
	"github.com/nirvachan/server/internal/auth"
	"github.com/nirvachan/server/internal/config"
	"github.com/nirvachan/server/internal/domain/constituencies"
	"github.com/nirvachan/server/internal/domain/events"
	"github.com/nirvachan/server/internal/domain/parties"
	"github.com/nirvachan/server/internal/domain/users"
	"github.com/nirvachan/server/internal/metrics"
	"github.com/nirvachan/server/internal/storage"
)

// Services bundles the domain services the router serves.
type Services struct {
	Events         *events.Service
	Parties        *parties.Service
	Constituencies *constituencies.Service
	Users          *users.Service
	Auth           *auth.Service
}

func NewServices(repo storage.Repository, authService *auth.Service) Services {
	return Services{
		Events:         events.NewService(repo.Events()),
		Parties:        parties.NewService(repo.Parties()),
		Constituencies: constituencies.NewService(repo.Constituencies()),
		Users:          users.NewService(repo.Users()),
		Auth:           authService,
	}
}

func NewRouter(cfg config.Config, logger zerolog.Logger, repo storage.Repository, services Services) http.Handler {
	env := cfg.Environment

	eventsHandler := handlers.NewEventsHandler(services.Events, env)
	partiesHandler := handlers.NewPartiesHandler(services.Parties, services.Events, env)
	constituenciesHandler := handlers.NewConstituenciesHandler(services.Constituencies, services.Events, env)
	authHandler := handlers.NewAuthHandler(services.Auth, env)
	usersHandler := handlers.NewUsersHandler(services.Users, services.Events, env)

	requireAuth := middleware.RequireIdentity(services.Auth, env)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.Health(repo))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("/v1/events", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.List),
	}))
	mux.Handle("/v1/events/nearby", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Nearby),
	}))
	mux.Handle("/v1/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(eventsHandler.Get),
	}))
	mux.Handle("/v1/events/{id}/rsvp", methodMux(map[string]http.Handler{
		http.MethodPost:   requireAuth(http.HandlerFunc(eventsHandler.RSVP)),
		http.MethodDelete: requireAuth(http.HandlerFunc(eventsHandler.CancelRSVP)),
	}))

	mux.Handle("/v1/parties", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(partiesHandler.List),
	}))
	mux.Handle("/v1/parties/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(partiesHandler.Get),
	}))
	mux.Handle("/v1/parties/{id}/events", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(partiesHandler.Events),
	}))

	mux.Handle("/v1/constituencies", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(constituenciesHandler.List),
	}))
	mux.Handle("/v1/constituencies/detect", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(constituenciesHandler.Detect),
	}))
	mux.Handle("/v1/constituencies/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(constituenciesHandler.Get),
	}))
	mux.Handle("/v1/constituencies/{id}/events", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(constituenciesHandler.Events),
	}))

	mux.Handle("/v1/auth/request-otp", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.RequestOTP),
	}))
	mux.Handle("/v1/auth/verify-otp", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.VerifyOTP),
	}))
	mux.Handle("/v1/auth/refresh", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Refresh),
	}))

	mux.Handle("/v1/users/me", methodMux(map[string]http.Handler{
		http.MethodGet:   requireAuth(http.HandlerFunc(usersHandler.Me)),
		http.MethodPatch: requireAuth(http.HandlerFunc(usersHandler.UpdateMe)),
	}))
	mux.Handle("/v1/users/me/rsvps", methodMux(map[string]http.Handler{
		http.MethodGet: requireAuth(http.HandlerFunc(usersHandler.MyRSVPs)),
	}))

	mux.Handle("/v1/meta/event-types", methodMux(map[string]http.Handler{
		http.MethodGet: handlers.EventTypes(),
	}))

	var handler http.Handler = mux
	handler = middleware.OptionalIdentity(services.Auth)(handler)
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	// The tier tag must be set before the limiter reads it.
	handler = otpRateTier(handler)
	handler = middleware.CORS(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}

// otpRateTier marks the OTP delivery routes so the rate limiter applies
// their tighter budget instead of the public one.
func otpRateTier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/request-otp", "/v1/auth/verify-otp":
			r = r.WithContext(middleware.WithRateLimitTier(r.Context(), middleware.TierOTP))
		}
		next.ServeHTTP(w, r)
	})
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
