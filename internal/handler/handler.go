// Package handler exposes the storefront over HTTP: catalog reads, cart
// mutations, checkout, order documents, and the API-key protected admin
// surface. Responses are snake_case JSON; errors are {code, message}.
package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quickparts/storefront/internal/domain/auth"
	"github.com/quickparts/storefront/internal/domain/cart"
	"github.com/quickparts/storefront/internal/domain/catalog"
	"github.com/quickparts/storefront/internal/domain/order"
)

// cartCookie is the fixed key the cart token travels under.
const cartCookie = "cart_token"

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// Company is the storefront name printed on invoices and share
	// messages.
	Company string
	// ImageBaseURL is prepended to relative image paths in catalog
	// responses. When empty, paths are returned as stored.
	ImageBaseURL string
}

// Handler routes storefront requests to the domain services.
type Handler struct {
	cfg      Config
	catalog  catalog.Repository
	writer   catalog.Writer
	carts    *cart.Store
	checkout *order.Checkout
	orders   order.Repository
	security *SecurityHandler
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	cat catalog.Repository,
	writer catalog.Writer,
	carts *cart.Store,
	checkout *order.Checkout,
	orders order.Repository,
	apikeys auth.Repository,
	pepper []byte,
) *Handler {
	return &Handler{
		cfg:      cfg,
		catalog:  cat,
		writer:   writer,
		carts:    carts,
		checkout: checkout,
		orders:   orders,
		security: NewSecurityHandler(apikeys, pepper),
	}
}

// Routes registers all API routes on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/machines", h.listMachines)
	mux.HandleFunc("GET /api/machines/{id}/parts", h.listParts)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addItem)
	mux.HandleFunc("PUT /api/cart/items/{partID}", h.setQuantity)
	mux.HandleFunc("PUT /api/cart/items/{partID}/comment", h.setComment)
	mux.HandleFunc("DELETE /api/cart/items/{partID}", h.removeItem)

	mux.HandleFunc("POST /api/checkout", h.submitOrder)
	mux.HandleFunc("GET /api/orders/{id}/document", h.orderDocument)
	mux.HandleFunc("GET /api/orders/{id}/share", h.orderShare)

	mux.Handle("GET /api/admin/orders", h.security.Require(http.HandlerFunc(h.adminListOrders)))
	mux.Handle("PATCH /api/admin/orders/{id}/status", h.security.Require(http.HandlerFunc(h.adminUpdateStatus)))
	mux.Handle("POST /api/admin/machines", h.security.Require(http.HandlerFunc(h.adminUpsertMachine)))
	mux.Handle("POST /api/admin/parts", h.security.Require(http.HandlerFunc(h.adminUpsertPart)))
}

// cartToken returns the caller's cart token, minting a new one (and setting
// the cookie) when the request carries none.
func (h *Handler) cartToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cartCookie); err == nil && c.Value != "" {
		return c.Value
	}

	token := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

// imageURL resolves a stored image path against the configured base URL.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.cfg.ImageBaseURL == "" {
		return path
	}
	return h.cfg.ImageBaseURL + "/" + path
}
