// Package handler exposes the storefront API over HTTP: request decoding,
// route registration, auth middleware, and the domain-error to status-code
// mapping. Business rules live in the domain services; handlers only
// translate between HTTP and those services.
package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bazarly/storefront/internal/auth"
	"github.com/bazarly/storefront/internal/domain/address"
	"github.com/bazarly/storefront/internal/domain/cart"
	"github.com/bazarly/storefront/internal/domain/catalog"
	"github.com/bazarly/storefront/internal/domain/order"
	"github.com/bazarly/storefront/internal/domain/user"
)

// Handler holds the domain dependencies behind the HTTP surface.
type Handler struct {
	users     user.Repository
	tokens    *auth.Tokens
	products  catalog.Repository
	addresses address.Repository
	carts     *cart.Service
	orders    *order.Service
	currency  string
}

// New creates a Handler. currency is the ISO code used for payment intents.
func New(
	users user.Repository,
	tokens *auth.Tokens,
	products catalog.Repository,
	addresses address.Repository,
	carts *cart.Service,
	orders *order.Service,
	currency string,
) *Handler {
	return &Handler{
		users:     users,
		tokens:    tokens,
		products:  products,
		addresses: addresses,
		carts:     carts,
		orders:    orders,
		currency:  currency,
	}
}

// Routes builds the API router. Public routes are registered directly;
// everything else goes through the bearer-token middleware, with role
// restrictions on the customer and seller subtrees.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()

	// Public.
	r.HandleFunc("/auth/signup", h.signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/product", h.listProducts).Methods(http.MethodGet)
	r.HandleFunc("/product/{id}", h.getProduct).Methods(http.MethodGet)

	// Any authenticated user.
	authed := r.NewRoute().Subrouter()
	authed.Use(h.authenticate)
	authed.HandleFunc("/profile", h.getProfile).Methods(http.MethodGet)
	authed.HandleFunc("/profile", h.updateProfile).Methods(http.MethodPut)
	authed.HandleFunc("/address", h.listAddresses).Methods(http.MethodGet)
	authed.HandleFunc("/address", h.createAddress).Methods(http.MethodPost)
	authed.HandleFunc("/address/{id}", h.updateAddress).Methods(http.MethodPut)
	authed.HandleFunc("/address/{id}", h.deleteAddress).Methods(http.MethodDelete)

	// Customer-only cart, order, and payment flows.
	customer := r.NewRoute().Subrouter()
	customer.Use(h.authenticate, requireRole(user.RoleCustomer))
	customer.HandleFunc("/cart", h.addCartItem).Methods(http.MethodPost)
	customer.HandleFunc("/cart", h.listCart).Methods(http.MethodGet)
	customer.HandleFunc("/cart/{id}", h.updateCartItem).Methods(http.MethodPut)
	customer.HandleFunc("/cart/{id}", h.removeCartItem).Methods(http.MethodDelete)
	customer.HandleFunc("/order/create", h.createOrder).Methods(http.MethodPost)
	customer.HandleFunc("/order/cancel", h.cancelOrder).Methods(http.MethodPost)
	customer.HandleFunc("/order", h.listOrders).Methods(http.MethodGet)
	customer.HandleFunc("/order/{id}", h.getOrder).Methods(http.MethodGet)
	customer.HandleFunc("/payment/order", h.createPaymentOrder).Methods(http.MethodPost)
	customer.HandleFunc("/payment/verify", h.verifyPayment).Methods(http.MethodPost)

	// Seller-only catalog management and sales view.
	seller := r.NewRoute().Subrouter()
	seller.Use(h.authenticate, requireRole(user.RoleSeller))
	seller.HandleFunc("/product", h.createProduct).Methods(http.MethodPost)
	seller.HandleFunc("/product/{id}", h.updateProduct).Methods(http.MethodPut)
	seller.HandleFunc("/product/{id}", h.deleteProduct).Methods(http.MethodDelete)
	seller.HandleFunc("/seller/products", h.listSellerProducts).Methods(http.MethodGet)
	seller.HandleFunc("/seller/orders", h.listSellerOrders).Methods(http.MethodGet)

	return r
}
