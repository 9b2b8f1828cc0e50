package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog lookups.
var (
	ErrMachineNotFound = errors.New("machine not found")
	ErrPartNotFound    = errors.New("part not found")
)

// Machine is a top-level catalog entry grouping spare parts.
type Machine struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
}

// Part is a purchasable spare part belonging to a machine.
type Part struct {
	ID          string
	MachineID   string
	Name        string
	Code        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
}

// Repository defines read operations for the catalog.
type Repository interface {
	ListMachines(ctx context.Context) ([]Machine, error)
	GetMachine(ctx context.Context, id string) (*Machine, error)
	ListPartsByMachine(ctx context.Context, machineID string) ([]Part, error)
	GetPart(ctx context.Context, id string) (*Part, error)
}

// Writer defines catalog mutation operations used by the admin surface and
// the seed/import commands. Validation of admin input is intentionally thin.
type Writer interface {
	UpsertMachine(ctx context.Context, m *Machine) error
	UpsertPart(ctx context.Context, p *Part) error
}
