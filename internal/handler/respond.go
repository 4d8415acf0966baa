package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/bazarly/storefront/internal/auth"
	"github.com/bazarly/storefront/internal/domain/address"
	"github.com/bazarly/storefront/internal/domain/cart"
	"github.com/bazarly/storefront/internal/domain/catalog"
	"github.com/bazarly/storefront/internal/domain/order"
	"github.com/bazarly/storefront/internal/domain/payment"
	"github.com/bazarly/storefront/internal/domain/user"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func respondErrorMsg(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Code: status, Message: msg})
}

// respondError maps a domain error to its HTTP status and a client-safe
// message. Unknown errors become a generic 500; the raw error text is logged
// but never sent to the client. Signature failures log at WARN since they
// indicate a possible forgery attempt rather than a client mistake.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var unavailable *order.ProductUnavailableError

	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		respondErrorMsg(w, http.StatusUnauthorized, "invalid or missing token")
	case errors.Is(err, auth.ErrBadCredentials):
		respondErrorMsg(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, user.ErrEmailTaken):
		respondErrorMsg(w, http.StatusBadRequest, "email already registered")
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, address.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, order.ErrNotFound):
		respondErrorMsg(w, http.StatusNotFound, "not found")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondErrorMsg(w, http.StatusBadRequest, "quantity must be at least 1")
	case errors.Is(err, order.ErrEmptyCart):
		respondErrorMsg(w, http.StatusBadRequest, "cart is empty")
	case errors.As(err, &unavailable):
		respondErrorMsg(w, http.StatusUnprocessableEntity, unavailable.Error())
	case errors.Is(err, order.ErrInvalidTransition):
		respondErrorMsg(w, http.StatusConflict, "invalid order status transition")
	case errors.Is(err, order.ErrConcurrentModification):
		respondErrorMsg(w, http.StatusConflict, "cart changed, retry the order")
	case errors.Is(err, payment.ErrInvalidSignature):
		zctx.From(r.Context()).Warn("payment signature verification failed",
			zap.String("remote_addr", r.RemoteAddr),
		)
		respondErrorMsg(w, http.StatusBadRequest, "invalid payment signature")
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondErrorMsg(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody parses a JSON request body into dst. A malformed body responds
// 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondErrorMsg(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
