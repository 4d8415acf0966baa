package handler

import (
	"net/http"
)

// createPaymentOrder places a PENDING order from the cart and registers a
// payment intent with the gateway for its total.
func (h *Handler) createPaymentOrder(w http.ResponseWriter, r *http.Request) {
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
	o, intent, err := h.orders.PlaceOrderWithIntent(r.Context(), p.UserID, req.AddressID, h.currency)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"order":     newOrderView(o),
		"intentId":  intent.ProviderOrderID,
		"amount":    intent.AmountMinor,
		"currency":  intent.Currency,
		"clientKey": intent.ClientKey,
	})
}

// verifyPayment handles the gateway callback: checks the signature and
// transitions the referenced order from PENDING to PLACED. Replays with the
// same payment id succeed without re-applying the transition.
func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProviderOrderID   string `json:"providerOrderId"`
		ProviderPaymentID string `json:"providerPaymentId"`
		Signature         string `json:"signature"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ProviderOrderID == "" || req.ProviderPaymentID == "" || req.Signature == "" {
		respondErrorMsg(w, http.StatusBadRequest, "providerOrderId, providerPaymentId, and signature are required")
		return
	}

	o, err := h.orders.ConfirmPayment(r.Context(), req.ProviderOrderID, req.ProviderPaymentID, req.Signature)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   newOrderView(o),
	})
}
