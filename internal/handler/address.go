package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bazarly/storefront/internal/domain/address"
)

type addressView struct {
	ID        string    `json:"id"`
	Line      string    `json:"line"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Country   string    `json:"country"`
	Zipcode   string    `json:"zipcode"`
	CreatedAt time.Time `json:"createdAt"`
}

func newAddressView(a address.Address) addressView {
	return addressView{
		ID:        a.ID,
		Line:      a.Line,
		City:      a.City,
		State:     a.State,
		Country:   a.Country,
		Zipcode:   a.Zipcode,
		CreatedAt: a.CreatedAt,
	}
}

type addressRequest struct {
	Line    string `json:"line"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Zipcode string `json:"zipcode"`
}

func (req *addressRequest) validate() bool {
	req.Line = strings.TrimSpace(req.Line)
	req.City = strings.TrimSpace(req.City)
	req.State = strings.TrimSpace(req.State)
	req.Country = strings.TrimSpace(req.Country)
	req.Zipcode = strings.TrimSpace(req.Zipcode)
	return req.Line != "" && req.City != "" && req.State != "" &&
		req.Country != "" && req.Zipcode != ""
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)
	list, err := h.addresses.ListByUser(r.Context(), p.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]addressView, len(list))
	for i, a := range list {
		out[i] = newAddressView(a)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) createAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.validate() {
		respondErrorMsg(w, http.StatusBadRequest, "line, city, state, country, and zipcode are required")
		return
	}

	p, _ := principal(r)
	a := &address.Address{
		ID:      uuid.NewString(),
		UserID:  p.UserID,
		Line:    req.Line,
		City:    req.City,
		State:   req.State,
		Country: req.Country,
		Zipcode: req.Zipcode,
	}
	if err := h.addresses.Create(r.Context(), a); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newAddressView(*a))
}

func (h *Handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.validate() {
		respondErrorMsg(w, http.StatusBadRequest, "line, city, state, country, and zipcode are required")
		return
	}

	p, _ := principal(r)
	a := &address.Address{
		ID:      mux.Vars(r)["id"],
		UserID:  p.UserID,
		Line:    req.Line,
		City:    req.City,
		State:   req.State,
		Country: req.Country,
		Zipcode: req.Zipcode,
	}
	if err := h.addresses.Update(r.Context(), a); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newAddressView(*a))
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	p, _ := principal(r)
	if err := h.addresses.Delete(r.Context(), p.UserID, mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
