package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/olekhv/contactbook/internal/auth"
	"github.com/olekhv/contactbook/internal/http/respond"
	"github.com/olekhv/contactbook/internal/mail"
	"github.com/olekhv/contactbook/internal/middleware"
	"github.com/olekhv/contactbook/internal/models"
	"github.com/olekhv/contactbook/internal/models/dto"
	"github.com/olekhv/contactbook/internal/storage"
)

// AuthHandler owns the signup, login, token, and password-reset endpoints.
type AuthHandler struct {
	users  storage.UserStore
	codes  storage.TempCodeStore
	tokens *auth.TokenManager
	mailer mail.Mailer
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users storage.UserStore, codes storage.TempCodeStore, tokens *auth.TokenManager, mailer mail.Mailer) *AuthHandler {
	return &AuthHandler{users: users, codes: codes, tokens: tokens, mailer: mailer}
}

// Register attaches the auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux, limits middleware.RouteLimits) {
	mux.Handle("POST /api/auth/signup", limits.Write(http.HandlerFunc(h.handleSignup)))
	mux.Handle("POST /api/auth/login", limits.Login(http.HandlerFunc(h.handleLogin)))
	mux.Handle("GET /api/auth/refresh_token", limits.Token(http.HandlerFunc(h.handleRefreshToken)))
	mux.Handle("GET /api/auth/verify_email/{token}", limits.Token(http.HandlerFunc(h.handleVerifyEmail)))
	mux.Handle("POST /api/auth/request_verify_email", limits.Token(http.HandlerFunc(h.handleRequestVerifyEmail)))
	mux.Handle("POST /api/auth/request_reset_password", limits.Token(http.HandlerFunc(h.handleRequestResetPassword)))
	mux.Handle("POST /api/auth/reset_password", limits.Token(http.HandlerFunc(h.handleResetPassword)))
	mux.Handle("PATCH /api/auth/reset_password", limits.Token(http.HandlerFunc(h.handleResetPassword)))
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Detail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateSignup(req); err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.Detail(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Avatar:       auth.GravatarURL(req.Email),
		Role:         models.RoleUser,
	}
	created, err := h.users.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Detail(w, http.StatusConflict, "Account already exists")
			return
		}
		log.Printf("create user: %v", err)
		respond.Detail(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	go h.sendVerification(created)

	respond.JSON(w, http.StatusCreated, created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respond.Detail(w, http.StatusBadRequest, "invalid form payload")
		return
	}
	email := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	user, err := h.users.UserByEmail(r.Context(), email)
	if err != nil {
		respond.Detail(w, http.StatusUnauthorized, "Incorrect email")
		return
	}
	if !user.Confirmed {
		respond.Detail(w, http.StatusUnauthorized, "Email not confirmed")
		return
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		respond.Detail(w, http.StatusUnauthorized, "Incorrect password")
		return
	}

	h.issueTokenPair(w, r, user)
}

func (h *AuthHandler) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		respond.Detail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	email, err := h.tokens.DecodeRefresh(token)
	if err != nil {
		respond.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	user, err := h.users.UserByEmail(r.Context(), email)
	if err != nil {
		respond.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	// The stored token is the single source of truth for liveness. On any
	// mismatch the stored token is cleared so the pair dies together.
	if user.RefreshToken == nil || *user.RefreshToken != token {
		if err := h.users.UpdateRefreshToken(r.Context(), user.ID, nil); err != nil {
			log.Printf("clear refresh token: %v", err)
		}
		respond.Detail(w, http.StatusUnauthorized, "Incorrect refresh token")
		return
	}

	h.issueTokenPair(w, r, user)
}

func (h *AuthHandler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	email, err := h.tokens.EmailFromToken(r.PathValue("token"))
	if err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, "Invalid email verification token")
		return
	}
	user, err := h.users.UserByEmail(r.Context(), email)
	if err != nil {
		respond.Detail(w, http.StatusBadRequest, "Verification failed")
		return
	}
	if user.Confirmed {
		respond.Message(w, http.StatusOK, "Email is already confirmed")
		return
	}
	if err := h.users.ConfirmEmail(r.Context(), email); err != nil {
		respond.Detail(w, http.StatusBadRequest, "Verification failed")
		return
	}
	respond.Message(w, http.StatusOK, "Email confirmed")
}

func (h *AuthHandler) handleRequestVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestEmail
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Detail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	user, err := h.users.UserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err == nil && user.Confirmed {
		respond.Message(w, http.StatusOK, "Email is already confirmed")
		return
	}
	if err == nil {
		go h.sendVerification(user)
	}
	// Unknown addresses get the same ack so accounts cannot be enumerated.
	respond.Message(w, http.StatusOK, "Check your email for confirmation")
}

func (h *AuthHandler) handleRequestResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestEmail
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Detail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	user, err := h.users.UserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err == nil {
		code, err := h.codes.CreateTempCode(r.Context(), user.Email, "Request reset password")
		if err != nil {
			log.Printf("create temp code: %v", err)
			respond.Detail(w, http.StatusInternalServerError, "failed to create reset code")
			return
		}
		token, err := h.tokens.ResetToken(user.Email)
		if err != nil {
			log.Printf("issue reset token: %v", err)
			respond.Detail(w, http.StatusInternalServerError, "failed to create reset code")
			return
		}
		go func() {
			if err := h.mailer.SendPasswordReset(user.Email, user.Username, code.Code, token); err != nil {
				log.Printf("send reset email: %v", err)
			}
		}()
	}
	respond.Message(w, http.StatusOK, "Check your email for reset password")
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Detail(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	email, err := h.tokens.ResetSubject(req.Token)
	if err != nil {
		respond.Detail(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	if req.Password != req.PasswordCheck {
		respond.Detail(w, http.StatusBadRequest, "Passwords do not match")
		return
	}
	if len(req.Password) < 6 {
		respond.Detail(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}
	if err := h.codes.ConsumeTempCode(r.Context(), email, req.TempCode); err != nil {
		switch {
		case errors.Is(err, storage.ErrCodeInvalid),
			errors.Is(err, storage.ErrCodeExpired),
			errors.Is(err, storage.ErrCodeUsed):
			respond.Detail(w, http.StatusBadRequest, "Code is invalid or expired")
		default:
			log.Printf("consume temp code: %v", err)
			respond.Detail(w, http.StatusInternalServerError, "failed to reset password")
		}
		return
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.Detail(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := h.users.UpdatePassword(r.Context(), email, passwordHash); err != nil {
		log.Printf("update password: %v", err)
		respond.Detail(w, http.StatusInternalServerError, "failed to reset password")
		return
	}
	respond.Message(w, http.StatusOK, "Password successfully updated")
}

// issueTokenPair creates a fresh access/refresh pair and makes the new
// refresh token the stored one.
func (h *AuthHandler) issueTokenPair(w http.ResponseWriter, r *http.Request, user models.User) {
	accessToken, err := h.tokens.AccessToken(user.Email)
	if err != nil {
		respond.Detail(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	refreshToken, err := h.tokens.RefreshToken(user.Email)
	if err != nil {
		respond.Detail(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	if err := h.users.UpdateRefreshToken(r.Context(), user.ID, &refreshToken); err != nil {
		log.Printf("store refresh token: %v", err)
		respond.Detail(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	})
}

func (h *AuthHandler) sendVerification(user models.User) {
	token, err := h.tokens.VerificationToken(user.Email)
	if err != nil {
		log.Printf("issue verification token: %v", err)
		return
	}
	if err := h.mailer.SendVerification(user.Email, user.Username, token); err != nil {
		log.Printf("send verification email: %v", err)
	}
}

func validateSignup(req dto.SignupRequest) error {
	if len(req.Username) < 3 || len(req.Username) > 50 {
		return errors.New("username must be between 3 and 50 characters")
	}
	if !strings.Contains(req.Email, "@") {
		return errors.New("a valid email is required")
	}
	if len(req.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}
