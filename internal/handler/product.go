package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/bazarly/storefront/internal/domain/catalog"
	"github.com/bazarly/storefront/internal/domain/pricing"
)

type productView struct {
	ID              string          `json:"id"`
	SellerID        string          `json:"sellerId"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	ImageURL        string          `json:"imageUrl,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	FinalPrice      decimal.Decimal `json:"finalPrice"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func newProductView(p catalog.Product) productView {
	return productView{
		ID:              p.ID,
		SellerID:        p.SellerID,
		Title:           p.Title,
		Description:     p.Description,
		ImageURL:        p.ImageURL,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent,
		FinalPrice:      pricing.UnitPrice(p.Price, p.DiscountPercent).Round(2),
		CreatedAt:       p.CreatedAt,
	}
}

func newProductViews(products []catalog.Product) []productView {
	out := make([]productView, len(products))
	for i, p := range products {
		out[i] = newProductView(p)
	}
	return out
}

type productRequest struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	ImageURL        string          `json:"imageUrl"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

func (req *productRequest) validate() (string, bool) {
	req.Title = strings.TrimSpace(req.Title)
	switch {
	case req.Title == "":
		return "title is required", false
	case req.Price.IsNegative() || req.Price.IsZero():
		return "price must be positive", false
	case req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(decimal.NewFromInt(100)):
		return "discountPercent must be between 0 and 100", false
	}
	return "", true
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductViews(products))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductView(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg, ok := req.validate(); !ok {
		respondErrorMsg(w, http.StatusBadRequest, msg)
		return
	}

	pr, _ := principal(r)
	p := &catalog.Product{
		ID:              uuid.NewString(),
		SellerID:        pr.UserID,
		Title:           req.Title,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		Price:           req.Price,
		DiscountPercent: req.DiscountPercent,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newProductView(*p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg, ok := req.validate(); !ok {
		respondErrorMsg(w, http.StatusBadRequest, msg)
		return
	}

	pr, _ := principal(r)
	p := &catalog.Product{
		ID:              mux.Vars(r)["id"],
		SellerID:        pr.UserID,
		Title:           req.Title,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		Price:           req.Price,
		DiscountPercent: req.DiscountPercent,
	}
	if err := h.products.Update(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductView(*p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	pr, _ := principal(r)
	if err := h.products.Delete(r.Context(), pr.UserID, mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) listSellerProducts(w http.ResponseWriter, r *http.Request) {
	pr, _ := principal(r)
	products, err := h.products.ListBySeller(r.Context(), pr.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductViews(products))
}
