package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/bazarly/storefront/internal/auth"
	"github.com/bazarly/storefront/internal/domain/user"
)

type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserView(u *user.User) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type authResponse struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == "" {
		req.Role = string(user.RoleCustomer)
	}
	role := user.Role(req.Role)
	switch {
	case req.Name == "" || req.Email == "" || len(req.Password) < 8:
		respondErrorMsg(w, http.StatusBadRequest, "name, email, and a password of at least 8 characters are required")
		return
	case !role.Valid() || role == user.RoleAdmin:
		respondErrorMsg(w, http.StatusBadRequest, "role must be CUSTOMER or SELLER")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	u := &user.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		respondError(w, r, errors.Wrap(err, "issue token"))
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{User: newUserView(u), Token: token})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// An unknown email reads the same as a wrong password.
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, r, auth.ErrBadCredentials)
			return
		}
		respondError(w, r, err)
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		respondError(w, r, auth.ErrBadCredentials)
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		respondError(w, r, errors.Wrap(err, "issue token"))
		return
	}
	respondJSON(w, http.StatusOK, authResponse{User: newUserView(u), Token: token})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)
	u, err := h.users.GetByID(r.Context(), p.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserView(u))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" && req.Password == "" {
		respondErrorMsg(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if req.Password != "" && len(req.Password) < 8 {
		respondErrorMsg(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	p, _ := principal(r)
	u, err := h.users.GetByID(r.Context(), p.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, r, err)
			return
		}
		u.PasswordHash = hash
	}
	if err := h.users.Update(r.Context(), u); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserView(u))
}
