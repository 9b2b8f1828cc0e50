package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/quickparts/storefront/internal/domain/catalog"
)

// listMachines serves GET /api/machines.
func (h *Handler) listMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := h.catalog.ListMachines(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("list machines", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load machines")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, m := range machines {
			h.encodeMachine(e, m)
		}
		e.ArrEnd()
	})
}

// listParts serves GET /api/machines/{id}/parts.
func (h *Handler) listParts(w http.ResponseWriter, r *http.Request) {
	machineID := r.PathValue("id")

	if _, err := h.catalog.GetMachine(r.Context(), machineID); err != nil {
		if errors.Is(err, catalog.ErrMachineNotFound) {
			writeError(w, http.StatusNotFound, "machine not found")
			return
		}
		zctx.From(r.Context()).Error("get machine", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load machine")
		return
	}

	parts, err := h.catalog.ListPartsByMachine(r.Context(), machineID)
	if err != nil {
		zctx.From(r.Context()).Error("list parts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load parts")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, p := range parts {
			h.encodePart(e, p)
		}
		e.ArrEnd()
	})
}

func (h *Handler) encodeMachine(e *jx.Encoder, m catalog.Machine) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(m.ID)
	e.FieldStart("name")
	e.Str(m.Name)
	e.FieldStart("description")
	e.Str(m.Description)
	if m.ImageURL != "" {
		e.FieldStart("image_url")
		e.Str(h.imageURL(m.ImageURL))
	}
	e.ObjEnd()
}

func (h *Handler) encodePart(e *jx.Encoder, p catalog.Part) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("machine_id")
	e.Str(p.MachineID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("code")
	e.Str(p.Code)
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("price")
	encodeDecimal(e, p.Price)
	if p.ImageURL != "" {
		e.FieldStart("image_url")
		e.Str(h.imageURL(p.ImageURL))
	}
	e.ObjEnd()
}
