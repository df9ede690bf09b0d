package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

const maxUploadMemory = 32 << 20

// AuthHandler implements registration, login, and session endpoints.
type AuthHandler struct {
	Users    UserStore
	Sessions SessionManager
	Media    MediaUploader
	Limiter  RateLimiter
	NowFunc  func() time.Time
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Avatar    string    `json:"avatar"`
	Cover     string    `json:"coverImage"`
	CreatedAt time.Time `json:"createdAt"`
}

func sanitizeUser(user models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Avatar:    user.AvatarURL,
		Cover:     user.CoverURL,
		CreatedAt: user.CreatedAt,
	}
}

// Register handles POST /api/v1/users/register. The request is a multipart
// form carrying the profile fields plus a required avatar image and an
// optional cover image.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "register") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many registration attempts")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	username := strings.TrimSpace(strings.ToLower(r.FormValue("username")))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	fullName := strings.TrimSpace(r.FormValue("fullName"))
	password := r.FormValue("password")

	if username == "" || email == "" || fullName == "" || password == "" {
		respondError(ctx, w, http.StatusBadRequest, "all fields are required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(password) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	avatarURL, err := h.storeUpload(r, "avatar")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "avatar is required")
		return
	}

	coverURL, err := h.storeUpload(r, "coverImage")
	if err != nil && !errors.Is(err, errFileMissing) {
		logger.Error("cover upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store cover image")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	now := h.now()
	user := models.User{
		ID:           models.NewID(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hashed),
		AvatarURL:    avatarURL,
		CoverURL:     coverURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "user already exists")
			return
		}
		logger.Error("failed to create user", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "failed to register user")
		return
	}

	respondData(ctx, w, http.StatusCreated, sanitizeUser(user), "user registered successfully")
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User   *userResponse        `json:"user,omitempty"`
	Tokens models.SessionTokens `json:"tokens"`
}

// Login handles POST /api/v1/users/login. The identifier may be either the
// email address or the username. A missing user and a wrong password are
// distinct failures: not found versus unauthorized.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	identifier := strings.TrimSpace(strings.ToLower(req.Email))
	if identifier == "" {
		identifier = strings.TrimSpace(strings.ToLower(req.Username))
	}
	if identifier == "" {
		respondError(ctx, w, http.StatusBadRequest, "email or username is required")
		return
	}

	user, err := h.Users.FindByEmailOrUsername(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "user does not exist")
			return
		}
		logger.Error("login lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "invalid user credentials")
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user.ID)
	if err != nil {
		logger.Error("failed to issue session", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return
	}

	sanitized := sanitizeUser(user)
	respondData(ctx, w, http.StatusOK, sessionResponse{User: &sanitized, Tokens: tokens}, "user logged in successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /api/v1/users/refresh. Presenting a rotated-out
// token is rejected; each successful refresh rotates the pair.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		respondError(ctx, w, http.StatusBadRequest, "refresh token is required")
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		logging.FromContext(ctx).Warn("refresh rejected", "error", err)
		respondFailure(ctx, w, err, "unable to refresh session")
		return
	}

	respondData(ctx, w, http.StatusOK, sessionResponse{Tokens: tokens}, "access token refreshed")
}

// Logout handles POST /api/v1/users/logout, revoking every refresh token
// issued to the actor.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	if err := h.Sessions.RevokeUser(ctx, actor); err != nil {
		logging.FromContext(ctx).Error("logout failed", "error", err, "userId", actor)
		respondError(ctx, w, http.StatusInternalServerError, "failed to log out")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "user logged out")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword handles POST /api/v1/users/change-password. A wrong old
// password is an invalid argument, not an auth failure; existing sessions
// stay valid.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actor := ActorFromContext(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.NewPassword) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := h.Users.FindByID(ctx, actor)
	if err != nil {
		logger.Error("change password lookup failed", "error", err, "userId", actor)
		respondFailure(ctx, w, err, "unable to load user")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid password")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	user.PasswordHash = string(hashed)
	user.UpdatedAt = h.now()
	if err := h.Users.Update(ctx, user); err != nil {
		logger.Error("failed to update password", "error", err, "userId", actor)
		respondFailure(ctx, w, err, "failed to change password")
		return
	}

	respondData(ctx, w, http.StatusOK, struct{}{}, "password changed successfully")
}

// CurrentUser handles GET /api/v1/users/me.
func (h AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	user, err := h.Users.FindByID(ctx, actor)
	if err != nil {
		respondFailure(ctx, w, err, "unable to load user")
		return
	}

	respondData(ctx, w, http.StatusOK, sanitizeUser(user), "user fetched successfully")
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UpdateAccount handles PATCH /api/v1/users/me.
func (h AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := ActorFromContext(ctx)

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" || req.Email == "" {
		respondError(ctx, w, http.StatusBadRequest, "all fields are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid email address")
		return
	}

	user, err := h.Users.FindByID(ctx, actor)
	if err != nil {
		respondFailure(ctx, w, err, "unable to load user")
		return
	}

	user.FullName = req.FullName
	user.Email = req.Email
	user.UpdatedAt = h.now()
	if err := h.Users.Update(ctx, user); err != nil {
		respondFailure(ctx, w, err, "failed to update account")
		return
	}

	respondData(ctx, w, http.StatusOK, sanitizeUser(user), "account details updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/me/avatar.
func (h AuthHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar")
}

// UpdateCover handles PATCH /api/v1/users/me/cover.
func (h AuthHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage")
}

func (h AuthHandler) updateImage(w http.ResponseWriter, r *http.Request, field string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actor := ActorFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	url, err := h.storeUpload(r, field)
	if err != nil {
		if errors.Is(err, errFileMissing) {
			respondError(ctx, w, http.StatusBadRequest, field+" file is missing")
			return
		}
		logger.Error("image upload failed", "field", field, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "error while uploading "+field)
		return
	}

	user, err := h.Users.FindByID(ctx, actor)
	if err != nil {
		respondFailure(ctx, w, err, "unable to load user")
		return
	}

	switch field {
	case "avatar":
		user.AvatarURL = url
	default:
		user.CoverURL = url
	}
	user.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, user); err != nil {
		respondFailure(ctx, w, err, "failed to update "+field)
		return
	}

	respondData(ctx, w, http.StatusOK, sanitizeUser(user), field+" updated successfully")
}

var errFileMissing = errors.New("file missing")

// storeUpload streams a multipart file field into the media store and
// returns the public location. Upload failures never leave a dangling
// reference: the caller only records the URL after a successful save.
func (h AuthHandler) storeUpload(r *http.Request, field string) (string, error) {
	return storeUpload(r, h.Media, field, "images")
}

func storeUpload(r *http.Request, store MediaUploader, field, prefix string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", errFileMissing
	}
	defer file.Close()

	if store == nil {
		return "", errors.New("media store unavailable")
	}

	name := fmt.Sprintf("%s/%s%s", prefix, models.NewID(), filepath.Ext(header.Filename))
	url, err := store.Save(r.Context(), name, file)
	if err != nil {
		return "", fmt.Errorf("store %s upload: %w", field, err)
	}

	return url, nil
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
