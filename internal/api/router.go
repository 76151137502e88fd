// Package api exposes the certification flow over HTTP: accounts, the
// course catalog, exam attempts, certificates, the payment webhook and the
// admin endpoints.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/certifica/internal/auth"
	"github.com/abhisek/certifica/internal/exam"
	"github.com/abhisek/certifica/internal/payment"
	"github.com/abhisek/certifica/internal/store"
)

// RequestTimeout bounds every request except the attempt websocket.
const RequestTimeout = 30 * time.Second

// Deps are the services behind the HTTP API.
type Deps struct {
	Store    *store.Store
	Auth     *auth.Service
	Exams    *exam.Manager
	Payments *payment.Service

	// WebhookSecret enables signature checks on the payment webhook.
	WebhookSecret string

	// CORSOrigins lists the web front-ends allowed to call the API.
	CORSOrigins []string

	Logger *slog.Logger
}

type handler struct {
	Deps
}

// NewRouter builds the HTTP handler.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	h := &handler{Deps: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(d.Logger), middleware.Recoverer)
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	// The countdown socket outlives RequestTimeout.
	r.With(d.Auth.Middleware).Get("/api/attempts/{id}/ws", h.attemptSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(RequestTimeout))

		r.Get("/certificates/{id}", h.printCertificate)

		r.Route("/api", func(r chi.Router) {
			r.Post("/auth/register", h.register)
			r.Post("/auth/login", h.login)
			r.Get("/courses", h.listCourses)
			r.Get("/courses/{id}", h.getCourse)
			r.Get("/plans", h.listPlans)
			r.Get("/certificates/verify/{code}", h.verifyCertificate)
			r.Post("/webhooks/abacatepay", h.paymentWebhook)

			r.Group(func(pr chi.Router) {
				pr.Use(d.Auth.Middleware)

				pr.Get("/me", h.me)
				pr.Get("/me/credits", h.myCredits)
				pr.Get("/me/certificates", h.myCertificates)
				pr.Get("/me/attempts", h.myAttempts)
				pr.Get("/me/purchases", h.myPurchases)

				pr.Post("/courses/{id}/attempts", h.startAttempt)
				pr.Route("/attempts/{id}", func(ar chi.Router) {
					ar.Get("/", h.getAttempt)
					ar.Delete("/", h.abandonAttempt)
					ar.Put("/answers/{qid}", h.answer)
					ar.Post("/submit", h.submit)
					ar.Post("/retry", h.retry)
					ar.Post("/certificate", h.requestCertificate)
				})

				pr.With(auth.RequireAdmin).Route("/admin", func(ar chi.Router) {
					ar.Get("/users", h.adminUsers)
					ar.Post("/users/{id}/credits", h.adminAdjustCredits)
					ar.Get("/certificates", h.adminCertificates)
					ar.Delete("/certificates/{id}", h.adminDeleteCertificate)
					ar.Get("/courses", h.adminCourses)
					ar.Post("/courses", h.adminCreateCourse)
					ar.Delete("/courses/{id}", h.adminDeleteCourse)
				})
			})
		})
	})

	return r
}

// requestLogger logs one line per request at Info, or Warn for 5xx.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.Status() >= 500 {
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
