package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/quickparts/storefront/internal/document"
	"github.com/quickparts/storefront/internal/domain/cart"
	"github.com/quickparts/storefront/internal/domain/catalog"
)

// getCart serves GET /api/cart.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	token := h.cartToken(w, r)
	items := h.carts.Items(r.Context(), token)
	h.writeCart(w, items)
}

// addItem serves POST /api/cart/items. The part is looked up in the catalog
// so the cart line carries a snapshot of its current name, code and price.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var (
		partID   string
		quantity = 1
	)
	err := decodeObj(body, func(d *jx.Decoder, key string) error {
		switch key {
		case "part_id":
			v, err := d.Str()
			if err != nil {
				return err
			}
			partID = v
			return nil
		case "quantity":
			v, err := decodeQuantity(d)
			if err != nil {
				return err
			}
			quantity = v
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if partID == "" {
		writeError(w, http.StatusBadRequest, "part_id is required")
		return
	}

	part, err := h.catalog.GetPart(r.Context(), partID)
	if err != nil {
		if errors.Is(err, catalog.ErrPartNotFound) {
			writeError(w, http.StatusUnprocessableEntity, "unknown part")
			return
		}
		zctx.From(r.Context()).Error("get part", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load part")
		return
	}

	machine, err := h.catalog.GetMachine(r.Context(), part.MachineID)
	if err != nil {
		zctx.From(r.Context()).Error("get machine for part", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load part")
		return
	}

	token := h.cartToken(w, r)
	items := h.carts.AddItem(r.Context(), token, cart.Snapshot{
		PartID:      part.ID,
		PartName:    part.Name,
		PartCode:    part.Code,
		MachineName: machine.Name,
		UnitPrice:   part.Price,
		ImageURL:    part.ImageURL,
	}, quantity)
	h.writeCart(w, items)
}

// setQuantity serves PUT /api/cart/items/{partID}. A quantity of zero, or
// anything that does not parse as a number, removes the line.
func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	partID := r.PathValue("partID")

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var quantity int
	err := decodeObj(body, func(d *jx.Decoder, key string) error {
		if key != "quantity" {
			return d.Skip()
		}
		v, err := decodeQuantity(d)
		if err != nil {
			return err
		}
		quantity = v
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	token := h.cartToken(w, r)
	items := h.carts.SetQuantity(r.Context(), token, partID, quantity)
	h.writeCart(w, items)
}

// setComment serves PUT /api/cart/items/{partID}/comment.
func (h *Handler) setComment(w http.ResponseWriter, r *http.Request) {
	partID := r.PathValue("partID")

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var comment string
	err := decodeObj(body, func(d *jx.Decoder, key string) error {
		if key != "comment" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		comment = v
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	token := h.cartToken(w, r)
	items := h.carts.SetComment(r.Context(), token, partID, comment)
	h.writeCart(w, items)
}

// removeItem serves DELETE /api/cart/items/{partID}.
func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	token := h.cartToken(w, r)
	items := h.carts.RemoveItem(r.Context(), token, r.PathValue("partID"))
	h.writeCart(w, items)
}

// writeCart renders the full cart view: flat items, machine groups, units
// and the recomputed total.
func (h *Handler) writeCart(w http.ResponseWriter, items []cart.Item) {
	total := cart.Total(items)
	groups := cart.GroupByMachine(items)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("items")
		e.ArrStart()
		for _, it := range items {
			encodeCartItem(e, it)
		}
		e.ArrEnd()
		e.FieldStart("groups")
		e.ArrStart()
		for _, g := range groups {
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
		e.FieldStart("units")
		e.Int(cart.Units(items))
		e.FieldStart("total")
		encodeDecimal(e, total)
		e.FieldStart("total_display")
		e.Str("₹" + document.FormatAmount(total))
		e.ObjEnd()
	})
}

func encodeCartItem(e *jx.Encoder, it cart.Item) {
	e.ObjStart()
	e.FieldStart("part_id")
	e.Str(it.PartID)
	e.FieldStart("part_name")
	e.Str(it.PartName)
	e.FieldStart("part_code")
	e.Str(it.PartCode)
	e.FieldStart("machine_name")
	e.Str(it.MachineName)
	e.FieldStart("quantity")
	e.Int(it.Quantity)
	e.FieldStart("unit_price")
	encodeDecimal(e, it.UnitPrice)
	e.FieldStart("line_total")
	encodeDecimal(e, cart.LineTotal(it))
	if it.ImageURL != "" {
		e.FieldStart("image_url")
		e.Str(it.ImageURL)
	}
	e.FieldStart("comment")
	e.Str(it.Comment)
	e.ObjEnd()
}
