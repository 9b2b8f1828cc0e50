//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func addToCart(t *testing.T, partID string, quantity int) cartResponse {
	t.Helper()

	resp := doPost(t, "/api/cart/items", map[string]any{"part_id": partID, "quantity": quantity})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add to cart: expected 200, got %d", resp.StatusCode)
	}
	return decodeJSON[cartResponse](t, resp)
}

func TestCart_AddAndMerge(t *testing.T) {
	clearCart(t)

	addToCart(t, "tx100-oil-filter", 2)
	c := addToCart(t, "tx100-oil-filter", 3)

	if len(c.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 5 {
		t.Errorf("quantity: got %d, want 5", c.Items[0].Quantity)
	}
	// 5 x 450 = 2250
	if c.Total != 2250 {
		t.Errorf("total: got %v, want 2250", c.Total)
	}
	if c.Units != 5 {
		t.Errorf("units: got %d, want 5", c.Units)
	}
}

func TestCart_UnknownPart(t *testing.T) {
	resp := doPost(t, "/api/cart/items", map[string]any{"part_id": "nonexistent"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCart_QuantityZeroRemoves(t *testing.T) {
	clearCart(t)
	addToCart(t, "tx100-oil-filter", 2)

	resp := doPut(t, "/api/cart/items/tx100-oil-filter", map[string]any{"quantity": 0})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c := decodeJSON[cartResponse](t, resp)
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(c.Items))
	}
	if c.Total != 0 {
		t.Errorf("total: got %v, want 0", c.Total)
	}
}

func TestCart_GroupsByMachine(t *testing.T) {
	clearCart(t)
	addToCart(t, "tx100-oil-filter", 1)
	addToCart(t, "h9-belt-drive", 1)
	c := addToCart(t, "tx100-fuel-pump", 1)

	if len(c.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(c.Groups))
	}
	// First-added machine comes first, and gains later lines.
	if c.Groups[0].MachineName != "Tractor TX-100" {
		t.Errorf("first group: got %q, want %q", c.Groups[0].MachineName, "Tractor TX-100")
	}
	if len(c.Groups[0].Items) != 2 {
		t.Errorf("first group lines: got %d, want 2", len(c.Groups[0].Items))
	}

	// Grouping is a bijection: group totals sum to the cart total.
	var sum float64
	for _, g := range c.Groups {
		for _, it := range g.Items {
			sum += it.LineTotal
		}
	}
	if sum != c.Total {
		t.Errorf("group line totals sum %v, cart total %v", sum, c.Total)
	}
}

func TestCart_Comment(t *testing.T) {
	clearCart(t)
	addToCart(t, "r6-blade-l", 4)

	resp := doPut(t, "/api/cart/items/r6-blade-l/comment", map[string]any{"comment": "left hand only"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c := decodeJSON[cartResponse](t, resp)
	if c.Items[0].Comment != "left hand only" {
		t.Errorf("comment: got %q, want %q", c.Items[0].Comment, "left hand only")
	}
}

func TestCart_PersistsAcrossRequests(t *testing.T) {
	clearCart(t)
	addToCart(t, "tx100-oil-filter", 1)

	// A fresh GET on the same session sees the stored cart.
	resp := doGet(t, "/api/cart")
	defer resp.Body.Close()
	c := decodeJSON[cartResponse](t, resp)
	if len(c.Items) != 1 {
		t.Fatalf("expected 1 line after reload, got %d", len(c.Items))
	}
}
