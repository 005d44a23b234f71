package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blogosphere/blogd/internal/auth"
	"github.com/blogosphere/blogd/internal/config"
	"github.com/blogosphere/blogd/internal/http/features/account"
	"github.com/blogosphere/blogd/internal/http/features/blog"
	"github.com/blogosphere/blogd/internal/http/middleware"
	"github.com/blogosphere/blogd/internal/httputil"
	"github.com/blogosphere/blogd/internal/notification"
	"github.com/blogosphere/blogd/internal/repository"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	Accounts        *auth.AccountService
	Sessions        *auth.Sessions
	Verification    *auth.VerificationService
	Reset           *auth.PasswordResetService
	Users           *repository.UsersRepository
	Posts           *repository.PostsRepository
	Comments        *repository.CommentsRepository
	Categories      *repository.CategoriesRepository
	Sender          notification.Sender
	AppBaseURL      string
	RateLimitConfig config.RateLimitConfig
}

// NewRouter creates the HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.RequestSizeLimit(maxRequestBodySize))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	accountHandler := account.NewHandler(
		cfg.Logger,
		cfg.Accounts,
		cfg.Sessions,
		cfg.Verification,
		cfg.Reset,
		cfg.Users,
		cfg.Sender,
		cfg.AppBaseURL,
	)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["auth"])
		r.Post("/v1/auth/signup", accountHandler.Signup)
		r.Post("/v1/auth/login", accountHandler.Login)
	})
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["token"])
		r.Post("/v1/auth/verification/resend", accountHandler.ResendVerification)
		r.Get("/v1/auth/verification/confirm/{token}", accountHandler.ConfirmVerification)
		r.Post("/v1/auth/password/reset", accountHandler.RequestReset)
		r.Get("/v1/auth/password/reset/confirm/{token}", accountHandler.PeekReset)
		r.Post("/v1/auth/password/reset/confirm", accountHandler.ConfirmReset)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Sessions))
		r.Use(middleware.RequireVerified())
		r.Post("/v1/auth/password/change", accountHandler.ChangePassword)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Sessions))
		r.Get("/v1/me", accountHandler.GetMe)
		r.Patch("/v1/me", accountHandler.UpdateMe)
	})

	blogHandler := blog.NewHandler(cfg.Logger, cfg.Posts, cfg.Comments, cfg.Categories)
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.Sessions))

		r.Get("/v1/posts", blogHandler.ListPosts)
		r.Post("/v1/posts", blogHandler.CreatePost)
		r.Get("/v1/posts/{id}", blogHandler.GetPost)
		r.Put("/v1/posts/{id}", blogHandler.UpdatePost)
		r.Delete("/v1/posts/{id}", blogHandler.DeletePost)

		r.Get("/v1/posts/{id}/comments", blogHandler.ListComments)
		r.Post("/v1/posts/{id}/comments", blogHandler.CreateComment)
		r.Delete("/v1/comments/{id}", blogHandler.DeleteComment)

		r.Get("/v1/categories", blogHandler.ListCategories)
		r.Post("/v1/categories", blogHandler.CreateCategory)
		r.Put("/v1/categories/{id}", blogHandler.UpdateCategory)
		r.Delete("/v1/categories/{id}", blogHandler.DeleteCategory)
	})

	return r
}
