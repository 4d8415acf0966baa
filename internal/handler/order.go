package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/bazarly/storefront/internal/domain/order"
)

type orderLineView struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type shippingView struct {
	Line    string `json:"line"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Zipcode string `json:"zipcode"`
}

type orderView struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Shipping  shippingView    `json:"shipping"`
	Lines     []orderLineView `json:"lines"`
	CreatedAt time.Time       `json:"createdAt"`
}

func newOrderView(o *order.Order) orderView {
	lines := make([]orderLineView, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLineView{
			ProductID: l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return orderView{
		ID:     o.ID,
		Status: string(o.Status),
		Total:  o.Total,
		Shipping: shippingView{
			Line:    o.Shipping.Line,
			City:    o.Shipping.City,
			State:   o.Shipping.State,
			Country: o.Shipping.Country,
			Zipcode: o.Shipping.Zipcode,
		},
		Lines:     lines,
		CreatedAt: o.CreatedAt,
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AddressID string `json:"addressId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AddressID == "" {
		respondErrorMsg(w, http.StatusBadRequest, "addressId is required")
		return
	}

	p, _ := principal(r)
	o, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		UserID:    p.UserID,
		AddressID: req.AddressID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newOrderView(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"orderId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OrderID == "" {
		respondErrorMsg(w, http.StatusBadRequest, "orderId is required")
		return
	}

	p, _ := principal(r)
	o, err := h.orders.Cancel(r.Context(), p.UserID, req.OrderID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newOrderView(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)
	orders, err := h.orders.List(r.Context(), p.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]orderView, len(orders))
	for i := range orders {
		out[i] = newOrderView(&orders[i])
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)
	o, err := h.orders.Get(r.Context(), p.UserID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newOrderView(o))
}

func (h *Handler) listSellerOrders(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)
	lines, err := h.orders.SoldLines(r.Context(), p.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	type sellerLineView struct {
		OrderID   string          `json:"orderId"`
		Status    string          `json:"status"`
		ProductID string          `json:"productId"`
		Title     string          `json:"title"`
		Quantity  int             `json:"quantity"`
		UnitPrice decimal.Decimal `json:"unitPrice"`
		CreatedAt time.Time       `json:"createdAt"`
	}
	out := make([]sellerLineView, len(lines))
	for i, l := range lines {
		out[i] = sellerLineView{
			OrderID:   l.OrderID,
			Status:    string(l.Status),
			ProductID: l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			CreatedAt: l.CreatedAt,
		}
	}
	respondJSON(w, http.StatusOK, out)
}
