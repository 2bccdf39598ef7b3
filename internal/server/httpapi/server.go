// Package httpapi exposes the interview backend over HTTP using echo.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/logging"
	"github.com/dmitrijs2005/aiinterview/internal/server/ai/heygen"
	"github.com/dmitrijs2005/aiinterview/internal/server/config"
	"github.com/dmitrijs2005/aiinterview/internal/server/credentials"
	"github.com/dmitrijs2005/aiinterview/internal/server/models"
	"github.com/dmitrijs2005/aiinterview/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

type AuthService interface {
	Register(ctx context.Context, role models.Role, in services.RegisterInput) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Authenticate(ctx context.Context, accessToken string) (*services.Identity, error)
	GetProfile(ctx context.Context, id *services.Identity) (*models.User, error)
	Logout(ctx context.Context, id *services.Identity) error
}

type InterviewService interface {
	Create(ctx context.Context, caller *services.Identity, in services.CreateInterviewInput) (*models.Interview, error)
	List(ctx context.Context, caller *services.Identity) ([]*models.Interview, error)
	Get(ctx context.Context, caller *services.Identity, id int64) (*models.Interview, error)
	UpdateStatus(ctx context.Context, caller *services.Identity, id int64, upd services.StatusUpdate) (*models.Interview, error)
}

type ResumeService interface {
	UploadURL(ctx context.Context, caller *services.Identity, fileName string) (*services.ResumeUpload, error)
	ConfirmUpload(ctx context.Context, caller *services.Identity, key string) (string, error)
}

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Auth       AuthService
	Interviews InterviewService
	Resumes    ResumeService
	OpenAI     *credentials.Store
	HeygenKey  *credentials.KeyStore
	Heygen     *heygen.Client
	DB         Pinger
}

type Server struct {
	address       string
	echo          *echo.Echo
	logger        logging.Logger
	deps          Deps
	healthTimeout time.Duration
}

func NewServer(cfg *config.Config, l logging.Logger, d Deps) *Server {
	s := &Server{
		address:       cfg.HTTPAddr,
		logger:        l.With("module", "http_server"),
		deps:          d,
		healthTimeout: cfg.HealthTimeout,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestID())
	e.Use(s.requestLogger())
	e.Use(requestContext)
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s.echo = e
	s.routes(cfg.AuthRateLimit)
	return s
}

func (s *Server) routes(authRate float64) {
	api := s.echo.Group("/api")

	authGroup := api.Group("/auth")
	if authRate > 0 {
		authGroup.Use(rateLimiter(authRate))
	}
	authGroup.POST("/register/candidate", s.registerHandler(models.RoleCandidate))
	authGroup.POST("/register/employer", s.registerHandler(models.RoleEmployer))
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh", s.refresh)
	authGroup.GET("/me", s.me, s.requireAuth)
	authGroup.POST("/logout", s.logout, s.requireAuth)

	api.GET("/health", s.health)
	api.POST("/set-api-key", s.setAPIKey)

	api.POST("/transcribe", s.transcribe, markVendorRoute)
	api.POST("/generate-response", s.generateResponse, markVendorRoute)
	api.POST("/text-to-speech", s.textToSpeech, markVendorRoute)

	avatar := api.Group("/avatar", markVendorRoute)
	avatar.GET("/config", s.avatarConfig)
	avatar.POST("/set-key", s.avatarSetKey)
	avatar.POST("/streaming", s.avatarStreaming)
	avatar.GET("/proxy", s.avatarProxy)

	interviews := api.Group("/interviews", s.requireAuth)
	interviews.GET("", s.listInterviews)
	interviews.POST("", s.createInterview)
	interviews.GET("/:id", s.getInterview)
	interviews.PATCH("/:id/status", s.updateInterviewStatus)

	api.POST("/candidates/resume-upload-url", s.resumeUploadURL, s.requireAuth)
	api.POST("/candidates/resume-confirm", s.resumeConfirm, s.requireAuth)
}

func rateLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
		},
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
