package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/quickparts/storefront/internal/domain/catalog"
	"github.com/quickparts/storefront/internal/domain/order"
)

// adminListOrders serves GET /api/admin/orders, newest first.
func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list orders", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range orders {
			encodeOrder(e, &orders[i])
		}
		e.ArrEnd()
	})
}

// adminUpdateStatus serves PATCH /api/admin/orders/{id}/status.
func (h *Handler) adminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var status order.Status
	err := decodeObj(body, func(d *jx.Decoder, key string) error {
		if key != "status" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		status = order.Status(v)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		zctx.From(r.Context()).Error("update order status", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(id)
		e.FieldStart("status")
		e.Str(string(status))
		e.ObjEnd()
	})
}

// adminUpsertMachine serves POST /api/admin/machines. An empty id creates a
// new machine.
func (h *Handler) adminUpsertMachine(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var m catalog.Machine
	err := decodeObj(body, func(d *jx.Decoder, key string) error {
		switch key {
		case "id", "name", "description", "image_url":
		default:
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		switch key {
		case "id":
			m.ID = v
		case "name":
			m.Name = v
		case "description":
			m.Description = v
		case "image_url":
			m.ImageURL = v
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if m.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	if err := h.writer.UpsertMachine(r.Context(), &m); err != nil {
		zctx.From(r.Context()).Error("upsert machine", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save machine")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		h.encodeMachine(e, m)
	})
}

// adminUpsertPart serves POST /api/admin/parts.
func (h *Handler) adminUpsertPart(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var p catalog.Part
	err := decodeObj(body, func(d *jx.Decoder, key string) error {
		if key == "price" {
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			v, err := decimal.NewFromString(trimQuotes(string(raw)))
			if err != nil {
				return errors.Wrap(err, "price")
			}
			p.Price = v
			return nil
		}

		switch key {
		case "id", "machine_id", "name", "code", "description", "image_url":
		default:
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		switch key {
		case "id":
			p.ID = v
		case "machine_id":
			p.MachineID = v
		case "name":
			p.Name = v
		case "code":
			p.Code = v
		case "description":
			p.Description = v
		case "image_url":
			p.ImageURL = v
		}
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if p.Name == "" || p.MachineID == "" {
		writeError(w, http.StatusBadRequest, "name and machine_id are required")
		return
	}
	if p.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	if _, err := h.catalog.GetMachine(r.Context(), p.MachineID); err != nil {
		if errors.Is(err, catalog.ErrMachineNotFound) {
			writeError(w, http.StatusUnprocessableEntity, "unknown machine")
			return
		}
		zctx.From(r.Context()).Error("get machine", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load machine")
		return
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	if err := h.writer.UpsertPart(r.Context(), &p); err != nil {
		zctx.From(r.Context()).Error("upsert part", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save part")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		h.encodePart(e, p)
	})
}

// trimQuotes strips the surrounding quotes of a raw JSON string so prices may
// arrive as either 123.45 or "123.45".
func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
