package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-signup-gate/internal/application/guard"
	"github.com/go-signup-gate/internal/config"
	"github.com/go-signup-gate/internal/transport/http/handler"
	appmiddleware "github.com/go-signup-gate/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. Background work started
// here stops when ctx is done.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(appmiddleware.Session(deps.Identity))

	// 5 requests/second, burst of 10, applied to every endpoint that sends mail or checks a password.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	go func() {
		<-ctx.Done()
		sensitiveRL.Stop()
	}()

	cookies := handler.Cookies{
		Secure:     cfg.CookieSecure,
		SessionTTL: cfg.JWTExpiry,
		AttemptTTL: cfg.AttemptTokenExpiry,
	}
	healthH := handler.NewHealthHandler(deps.Store)
	signupH := handler.NewSignupHandler(deps.Signup, cookies)
	authH := handler.NewAuthHandler(deps.Identity, cookies)
	pageH := handler.NewPageHandler()

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/route-access", pageH.RouteAccess)

		r.Route("/auth", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/signup", signupH.Signup)
			r.With(sensitiveRL.Limit).Post("/reset-password", signupH.ResetPassword)
			r.With(sensitiveRL.Limit).Post("/verify-otp", signupH.VerifyOtp)
			r.With(sensitiveRL.Limit).Post("/resend-otp", signupH.ResendOtp)
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.Post("/logout", authH.Logout)
			r.Post("/new-password", signupH.NewPassword)
		})
	})

	// Pages. Guard redirects before the handler runs.
	r.With(sensitiveRL.Limit).Get("/auth/confirm", authH.Confirm)
	r.With(appmiddleware.RedirectWithoutSession(guard.PathResetPassword)).Get(guard.PathNewPassword, pageH.NewPassword)
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Guard)

		r.Get(guard.PathDashboard, pageH.Dashboard)
		r.Get(guard.PathDashboard+"/*", pageH.Dashboard)
		r.Get(guard.PathUnauthenticated, pageH.Unauthenticated)
		r.Get("/auth/{page}", pageH.Auth)
	})

	return r
}
