package account

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blogosphere/blogd/internal/auth"
	"github.com/blogosphere/blogd/internal/domain"
	"github.com/blogosphere/blogd/internal/httputil"
	"github.com/blogosphere/blogd/internal/http/middleware"
	"github.com/blogosphere/blogd/internal/notification"
	"github.com/blogosphere/blogd/internal/repository"
)

// Handler serves signup, login, verification and password flows.
type Handler struct {
	logger       *slog.Logger
	accounts     *auth.AccountService
	sessions     *auth.Sessions
	verification *auth.VerificationService
	reset        *auth.PasswordResetService
	users        *repository.UsersRepository
	sender       notification.Sender
	appBaseURL   string
}

// NewHandler creates the account handler.
func NewHandler(
	logger *slog.Logger,
	accounts *auth.AccountService,
	sessions *auth.Sessions,
	verification *auth.VerificationService,
	reset *auth.PasswordResetService,
	users *repository.UsersRepository,
	sender notification.Sender,
	appBaseURL string,
) *Handler {
	return &Handler{
		logger:       logger,
		accounts:     accounts,
		sessions:     sessions,
		verification: verification,
		reset:        reset,
		users:        users,
		sender:       sender,
		appBaseURL:   appBaseURL,
	}
}

type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	IsVerified bool      `json:"is_verified"`
	DateJoined time.Time `json:"date_joined"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:         u.ID.String(),
		Email:      u.Email,
		Username:   u.Username,
		IsVerified: u.IsVerified,
		DateJoined: u.DateJoined,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// tokenErrorStatus maps the token error taxonomy onto HTTP statuses. Every
// domain error renders a precise message; anything else is an
// infrastructure failure.
func (h *Handler) tokenError(w http.ResponseWriter, err error) {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		httputil.Error(w, http.StatusBadRequest, verr.Error())
		return
	}
	switch {
	case errors.Is(err, domain.ErrTokenNotFound):
		httputil.Error(w, http.StatusBadRequest, "token not found")
	case errors.Is(err, domain.ErrTokenInactive):
		httputil.Error(w, http.StatusBadRequest, "token already used")
	case errors.Is(err, domain.ErrInvalidToken):
		httputil.Error(w, http.StatusBadRequest, "invalid token")
	case errors.Is(err, domain.ErrWrongPurpose):
		httputil.Error(w, http.StatusBadRequest, "token purpose mismatch")
	case errors.Is(err, domain.ErrOwnerMismatch):
		httputil.Error(w, http.StatusBadRequest, "token owner mismatch")
	case errors.Is(err, domain.ErrTokenExpired):
		httputil.Error(w, http.StatusBadRequest, "token expired")
	case errors.Is(err, domain.ErrAlreadyVerified):
		httputil.Error(w, http.StatusBadRequest, "user is already verified")
	case errors.Is(err, domain.ErrNotVerified):
		httputil.Error(w, http.StatusBadRequest, "user is not verified")
	default:
		h.logger.Error("token operation failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup handles POST /v1/auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email, username and password are required")
		return
	}

	user, err := h.accounts.Signup(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		var verr *auth.ValidationError
		if errors.As(err, &verr) {
			httputil.Error(w, http.StatusBadRequest, verr.Error())
			return
		}
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "user already exists")
			return
		}
		h.logger.Error("signup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.sendVerification(r, user)

	h.logger.Info("user signed up", "user_id", user.ID)
	httputil.JSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) sendVerification(r *http.Request, user *domain.User) {
	raw, err := h.verification.IssueVerification(r.Context(), user)
	if err != nil {
		h.logger.Error("failed to issue verification token", "error", err, "user_id", user.ID)
		return
	}
	link := fmt.Sprintf("%s/v1/auth/verification/confirm/%s", h.appBaseURL, raw)
	if err := h.sender.Send(r.Context(), user.Email, "Blogosphere: Email Verification", link); err != nil {
		h.logger.Error("failed to send verification", "error", err, "user_id", user.ID)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        userResponse `json:"user"`
}

// Login handles POST /v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httputil.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	accessToken, err := h.sessions.IssueAccessToken(user)
	if err != nil {
		h.logger.Error("failed to issue access token", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, loginResponse{
		AccessToken: accessToken,
		User:        toUserResponse(user),
	})
}

type emailRequest struct {
	Email string `json:"email"`
}

// ResendVerification handles POST /v1/auth/verification/resend. Unknown
// addresses get the same generic success as known ones so the endpoint
// never reveals whether an account exists.
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	user, err := h.users.GetByEmail(r.Context(), auth.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.JSON(w, http.StatusOK, messageResponse{Message: "Verification email sent."})
			return
		}
		h.logger.Error("resend lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user.IsVerified {
		httputil.Error(w, http.StatusBadRequest, "user is already verified")
		return
	}

	h.sendVerification(r, user)
	httputil.JSON(w, http.StatusOK, messageResponse{Message: "Verification email sent."})
}

// ConfirmVerification handles GET /v1/auth/verification/confirm/{token}.
func (h *Handler) ConfirmVerification(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "token")

	user, err := h.verification.Confirm(r.Context(), raw)
	if err != nil {
		h.tokenError(w, err)
		return
	}

	h.logger.Info("user verified", "user_id", user.ID)
	httputil.JSON(w, http.StatusOK, messageResponse{Message: "User verified successfully."})
}

type passwordChangeRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword handles POST /v1/auth/password/change. Requires an
// authenticated, verified actor.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req passwordChangeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		httputil.Error(w, http.StatusBadRequest, "new_password is required")
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		var verr *auth.ValidationError
		if errors.As(err, &verr) {
			httputil.Error(w, http.StatusBadRequest, verr.Error())
			return
		}
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httputil.Error(w, http.StatusBadRequest, "old password is incorrect")
			return
		}
		h.logger.Error("password change failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, messageResponse{Message: "Password changed successfully."})
}

// RequestReset handles POST /v1/auth/password/reset. Same generic response
// for unknown addresses as the resend endpoint.
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	user, err := h.users.GetByEmail(r.Context(), auth.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.JSON(w, http.StatusOK, messageResponse{Message: "Password reset email sent."})
			return
		}
		h.logger.Error("reset lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	raw, err := h.reset.IssueReset(r.Context(), user)
	if err != nil {
		h.tokenError(w, err)
		return
	}

	link := fmt.Sprintf("%s/v1/auth/password/reset/confirm/%s", h.appBaseURL, raw)
	if err := h.sender.Send(r.Context(), user.Email, "Blogosphere: Password Reset", link); err != nil {
		h.logger.Error("failed to send reset", "error", err, "user_id", user.ID)
	}

	httputil.JSON(w, http.StatusOK, messageResponse{Message: "Password reset email sent."})
}

// PeekReset handles GET /v1/auth/password/reset/confirm/{token}: the
// form-render step validates without burning the token.
func (h *Handler) PeekReset(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "token")

	if _, err := h.reset.Peek(r.Context(), raw); err != nil {
		h.tokenError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, messageResponse{Message: "Token is valid."})
}

type resetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ConfirmReset handles POST /v1/auth/password/reset/confirm: consumes the
// token and stores the new password.
func (h *Handler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		httputil.Error(w, http.StatusBadRequest, "token and new_password are required")
		return
	}

	user, err := h.reset.ConfirmReset(r.Context(), req.Token, req.NewPassword, true)
	if err != nil {
		h.tokenError(w, err)
		return
	}

	h.logger.Info("password reset", "user_id", user.ID)
	httputil.JSON(w, http.StatusOK, messageResponse{Message: "Password reset successfully."})
}

// GetMe handles GET /v1/me.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("profile lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, toUserResponse(user))
}

type updateMeRequest struct {
	Username *string `json:"username"`
}

// UpdateMe handles PATCH /v1/me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateMeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "user not found")
		return
	}
	if req.Username != nil && *req.Username != "" {
		if err := auth.ValidateUsername(*req.Username); err != nil {
			httputil.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		user.Username = *req.Username
	}

	if err := h.users.UpdateProfile(r.Context(), user); err != nil {
		h.logger.Error("profile update failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, toUserResponse(user))
}
