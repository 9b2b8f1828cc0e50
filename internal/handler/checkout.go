package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/quickparts/storefront/internal/document"
	"github.com/quickparts/storefront/internal/domain/order"
)

// submitOrder serves POST /api/checkout. An Idempotency-Key header makes
// client retries safe; the same key always yields the same order.
func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var customer order.CustomerInfo
	err := decodeObj(body, func(d *jx.Decoder, key string) error {
		if key != "customer_info" {
			return d.Skip()
		}
		return d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "name", "phone", "email", "company":
			default:
				return d.Skip()
			}
			v, err := d.Str()
			if err != nil {
				return err
			}
			switch key {
			case "name":
				customer.Name = v
			case "phone":
				customer.Phone = v
			case "email":
				customer.Email = v
			case "company":
				customer.Company = v
			}
			return nil
		})
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	token := h.cartToken(w, r)
	o, err := h.checkout.Submit(r.Context(), token, customer, r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.writeSubmitError(w, r, err)
		return
	}

	message := document.ShareMessage(h.cfg.Company, o)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		encodeOrderFields(e, o)
		e.FieldStart("document_url")
		e.Str("/api/orders/" + o.ID + "/document")
		e.FieldStart("share_message")
		e.Str(message)
		e.FieldStart("share_url")
		e.Str(document.ShareURL(message))
		e.ObjEnd()
	})
}

// writeSubmitError maps checkout failures onto HTTP statuses. A failed
// persistence attempt reports the cart as preserved so the client can retry.
func (h *Handler) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *order.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, vErr.Error())
		return
	}
	if errors.Is(err, order.ErrEmptyCart) {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}
	if errors.Is(err, order.ErrSubmissionInFlight) {
		writeError(w, http.StatusConflict, "submission already in progress")
		return
	}

	var sErr *order.SubmissionError
	if errors.As(err, &sErr) {
		zctx.From(r.Context()).Error("order submission failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "order could not be saved, your cart is preserved")
		return
	}

	zctx.From(r.Context()).Error("checkout failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "checkout failed")
}

// orderDocument serves GET /api/orders/{id}/document: the order invoice as a
// PDF download.
func (h *Handler) orderDocument(w http.ResponseWriter, r *http.Request) {
	o, ok := h.loadOrder(w, r)
	if !ok {
		return
	}

	inv := document.BuildInvoice(h.cfg.Company, o)
	pdf, err := document.RenderPDF(inv)
	if err != nil {
		zctx.From(r.Context()).Error("invoice rendering failed",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to generate document")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+document.FileName(h.cfg.Company, o)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// orderShare serves GET /api/orders/{id}/share: the plain-text summary and a
// prefilled messaging link.
func (h *Handler) orderShare(w http.ResponseWriter, r *http.Request) {
	o, ok := h.loadOrder(w, r)
	if !ok {
		return
	}

	message := document.ShareMessage(h.cfg.Company, o)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("message")
		e.Str(message)
		e.FieldStart("share_url")
		e.Str(document.ShareURL(message))
		e.ObjEnd()
	})
}

// loadOrder fetches the order named by the {id} path value, writing the
// error response itself when the lookup fails.
func (h *Handler) loadOrder(w http.ResponseWriter, r *http.Request) (*order.Order, bool) {
	id := r.PathValue("id")
	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return nil, false
		}
		zctx.From(r.Context()).Error("get order", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return nil, false
	}
	return o, true
}

// encodeOrder renders the full order, including the frozen items grouped by
// machine the same way the cart view groups them.
func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	encodeOrderFields(e, o)
	e.ObjEnd()
}

func encodeOrderFields(e *jx.Encoder, o *order.Order) {
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("customer_info")
	e.ObjStart()
	e.FieldStart("name")
	e.Str(o.Customer.Name)
	e.FieldStart("phone")
	e.Str(o.Customer.Phone)
	if o.Customer.Email != "" {
		e.FieldStart("email")
		e.Str(o.Customer.Email)
	}
	if o.Customer.Company != "" {
		e.FieldStart("company")
		e.Str(o.Customer.Company)
	}
	e.ObjEnd()
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		encodeCartItem(e, it)
	}
	e.ArrEnd()
	e.FieldStart("groups")
	e.ArrStart()
	for _, g := range o.Groups() {
		e.ObjStart()
		e.FieldStart("machine_name")
		e.Str(g.MachineName)
		e.FieldStart("items")
		e.ArrStart()
		for _, it := range g.Items {
			encodeCartItem(e, it)
		}
		e.ArrEnd()
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("total_amount")
	encodeDecimal(e, o.TotalAmount)
	e.FieldStart("total_display")
	e.Str("₹" + document.FormatAmount(o.TotalAmount))
	e.FieldStart("created_at")
	e.Str(o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
}
