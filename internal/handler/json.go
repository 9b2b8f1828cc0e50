package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// maxBodySize bounds request bodies; cart and admin payloads are small.
const maxBodySize = 1 << 20

// writeJSON encodes a response with jx and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the {code, message} error shape.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// encodeDecimal writes a money amount as a JSON number with its exact decimal
// representation. Going through float64 would round values the NUMERIC
// columns store exactly.
func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

// readBody reads a bounded request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return nil, false
	}
	return body, true
}

// decodeObj decodes a JSON object body, dispatching each key to fn.
func decodeObj(body []byte, fn func(d *jx.Decoder, key string) error) error {
	d := jx.DecodeBytes(body)
	return d.Obj(func(d *jx.Decoder, key string) error {
		return fn(d, key)
	})
}

// decodeQuantity reads a quantity that may arrive as a JSON number or a
// numeric string. Anything non-numeric coerces to 0, which downstream
// removes the cart line (the documented fallback).
func decodeQuantity(d *jx.Decoder) (int, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return 0, err
		}
		v, err := n.Int64()
		if err != nil {
			return 0, nil
		}
		return int(v), nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, nil
		}
		return v, nil
	default:
		if err := d.Skip(); err != nil {
			return 0, err
		}
		return 0, nil
	}
}
