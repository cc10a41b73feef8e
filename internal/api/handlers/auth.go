// Package handlers contains the HTTP handler implementations for the
// AgriKlima API. Each handler declares its service dependencies as local
// interfaces and mounts its own routes via RegisterRoutes.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"agriklima/internal/core"
	"agriklima/internal/types"
)

// UserStore defines the persistence contract for the auth handler.
type UserStore interface {
	Create(ctx context.Context, u *types.User) error
	GetByID(ctx context.Context, id string) (*types.User, error)
	GetByEmail(ctx context.Context, email string) (*types.User, error)
	Update(ctx context.Context, u *types.User) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues signed access tokens.
type TokenIssuer interface {
	Issue(user *types.User) (string, error)
}

// AuthHandler serves registration, login, and the signed-in user's own
// profile.
type AuthHandler struct {
	users       UserStore
	hasher      PasswordHasher
	tokens      TokenIssuer
	validator   *core.Validator
	minPassword int
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	users UserStore,
	hasher PasswordHasher,
	tokens TokenIssuer,
	val *core.Validator,
	minPassword int,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		validator:   val,
		minPassword: minPassword,
		logger:      logger,
	}
}

// RegisterRoutes mounts the auth endpoints onto the mux. Registration and
// login are public; profile routes require authentication.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(core.RequireAuth)
		r.Get("/users/me", h.HandleGetProfile)
		r.Put("/users/me", h.HandleUpdateProfile)
	})
}

// registerRequest is the payload for POST /v1/auth/register.
type registerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Mobile    string `json:"mobile,omitempty" validate:"omitempty,max=20"`
	Location  string `json:"location,omitempty" validate:"omitempty,max=200"`
	FarmName  string `json:"farm_name,omitempty" validate:"omitempty,max=200"`
}

// authResponse is the response body for register and login.
type authResponse struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

// HandleRegister handles POST /v1/auth/register. New accounts are always
// regular farmers; the admin flag can only be granted by an existing admin.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}
	if len(req.Password) < h.minPassword {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeValidationWeakPassword,
			"password is too short",
			nil,
			map[string]any{"min_length": h.minPassword},
		))
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	now := time.Now().UTC()
	user := &types.User{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Mobile:       req.Mobile,
		Location:     req.Location,
		FarmName:     req.FarmName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		core.Error(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: authResponse{
		Token: token,
		User:  user,
	}})
}

// loginRequest is the payload for POST /v1/auth/login.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles POST /v1/auth/login. Unknown email and wrong password
// both surface as auth_invalid_credentials so the response does not reveal
// which accounts exist.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeAuthInvalidCreds,
			"invalid email or password",
			err,
		))
		return
	}
	if err := h.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		core.Error(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: authResponse{
		Token: token,
		User:  user,
	}})
}

// HandleGetProfile handles GET /v1/users/me.
func (h *AuthHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := types.GetActor(r.Context())

	user, err := h.users.GetByID(r.Context(), actor.ID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: user})
}

// updateProfileRequest is the payload for PUT /v1/users/me. Email and the
// admin flag are not updatable through this endpoint.
type updateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Mobile    string `json:"mobile,omitempty" validate:"omitempty,max=20"`
	Location  string `json:"location,omitempty" validate:"omitempty,max=200"`
	FarmName  string `json:"farm_name,omitempty" validate:"omitempty,max=200"`
}

// HandleUpdateProfile handles PUT /v1/users/me.
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := types.GetActor(r.Context())

	var req updateProfileRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), actor.ID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Mobile = req.Mobile
	user.Location = req.Location
	user.FarmName = req.FarmName
	user.UpdatedAt = time.Now().UTC()

	if err := h.users.Update(r.Context(), user); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: user})
}
