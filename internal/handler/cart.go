package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/bazarly/storefront/internal/domain/cart"
)

type cartLineView struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartDisplayView struct {
	cartLineView
	Product   productView     `json:"product"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

func newCartLineView(l *cart.Line) cartLineView {
	return cartLineView{ID: l.ID, ProductID: l.ProductID, Quantity: l.Quantity}
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondErrorMsg(w, http.StatusBadRequest, "productId is required")
		return
	}
	// Quantity is optional on add; an omitted field means one unit.
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	p, _ := principal(r)
	line, err := h.carts.AddItem(r.Context(), p.UserID, req.ProductID, quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newCartLineView(line))
}

func (h *Handler) listCart(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)
	lines, err := h.carts.ListItems(r.Context(), p.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]cartDisplayView, len(lines))
	for i, l := range lines {
		out[i] = cartDisplayView{
			cartLineView: newCartLineView(&l.Line),
			Product:      newProductView(l.Product),
			UnitPrice:    l.UnitPrice,
			LineTotal:    l.LineTotal,
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, _ := principal(r)
	line, err := h.carts.UpdateQuantity(r.Context(), p.UserID, mux.Vars(r)["id"], req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartLineView(line))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)
	if err := h.carts.RemoveItem(r.Context(), p.UserID, mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
