//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListMachines(t *testing.T) {
	resp := doGet(t, "/api/machines")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	machines := decodeJSON[[]machineResponse](t, resp)
	if len(machines) != 3 {
		t.Fatalf("expected 3 machines, got %d", len(machines))
	}
}

func TestListParts(t *testing.T) {
	resp := doGet(t, "/api/machines/tractor-tx100/parts")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	parts := decodeJSON[[]partResponse](t, resp)
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}

	var filter *partResponse
	for i := range parts {
		if parts[i].ID == "tx100-oil-filter" {
			filter = &parts[i]
			break
		}
	}
	if filter == nil {
		t.Fatal("part 'tx100-oil-filter' not found")
	}
	if filter.Name != "Oil Filter" {
		t.Errorf("name: got %q, want %q", filter.Name, "Oil Filter")
	}
	if filter.Code != "OF-100" {
		t.Errorf("code: got %q, want %q", filter.Code, "OF-100")
	}
	if filter.Price != 450 {
		t.Errorf("price: got %v, want 450", filter.Price)
	}
	if filter.MachineID != "tractor-tx100" {
		t.Errorf("machine_id: got %q, want %q", filter.MachineID, "tractor-tx100")
	}
}

func TestListParts_UnknownMachine(t *testing.T) {
	resp := doGet(t, "/api/machines/nonexistent/parts")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}
