package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/quiz-kiosk-api/internal/application/admin"
	"github.com/quiz-kiosk-api/internal/application/game"
	"github.com/quiz-kiosk-api/internal/application/otp"
	"github.com/quiz-kiosk-api/internal/application/report"
	"github.com/quiz-kiosk-api/internal/config"
	"github.com/quiz-kiosk-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/quiz-kiosk-api/internal/infrastructure/jwt"
	s3infra "github.com/quiz-kiosk-api/internal/infrastructure/s3"
	"github.com/quiz-kiosk-api/internal/infrastructure/smtp"
	"github.com/quiz-kiosk-api/internal/pkg/attempts"
	"github.com/quiz-kiosk-api/internal/pkg/ratelimit"
	"github.com/quiz-kiosk-api/internal/transport/http/handler"
	appmiddleware "github.com/quiz-kiosk-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	ChallengeRepo *dynamo.ChallengeRepo
	SessionRepo   *dynamo.SessionRepo
	S3Store       *s3infra.Store
	Mailer        smtp.Mailer
	JWTProvider   *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	var tokens admin.TokenProvider
	adminMw := appmiddleware.AdminDisabled
	if deps.JWTProvider != nil {
		tokens = deps.JWTProvider
		adminMw = appmiddleware.AdminAuth(deps.JWTProvider)
	}

	var archive report.Archiver
	if deps.S3Store != nil {
		archive = deps.S3Store
	}

	otpSvc := otp.NewService(otp.ServiceDeps{
		Challenges: deps.ChallengeRepo,
		Sessions:   deps.SessionRepo,
		Mailer:     deps.Mailer,
		Limiter:    ratelimit.NewWindow(otp.IssueLimit, otp.IssueWindow),
		Attempts:   attempts.NewGuard(otp.MaxVerifyAttempts),
	})
	gameSvc := game.NewService(deps.SessionRepo)
	reportSvc := report.NewService(deps.SessionRepo, archive)
	adminSvc := admin.NewService(cfg, tokens)

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(otpSvc, cfg.IsDevelopment())
	gameH := handler.NewGameHandler(gameSvc)
	reportH := handler.NewReportHandler(reportSvc)
	adminH := handler.NewAdminHandler(adminSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/auth/send-otp", otpH.SendOTP)
		r.With(sensitiveRL.Limit).Post("/auth/verify-otp", otpH.VerifyOTP)

		r.Post("/game/result", gameH.RecordResult)

		r.Route("/admin", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/login", adminH.Login)
			r.Post("/verify", adminH.VerifyToken)

			r.Group(func(r chi.Router) {
				r.Use(adminMw)

				r.Get("/stats", reportH.Stats)
				r.Get("/export", reportH.Export)
			})
		})
	})

	return r
}
