package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickparts/storefront/internal/domain/catalog"
)

var (
	_ catalog.Repository = (*CatalogRepository)(nil)
	_ catalog.Writer     = (*CatalogRepository)(nil)
)

// CatalogRepository implements catalog reads and admin upserts backed by
// PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

const listMachinesSQL = `SELECT id, name, description, image_url
	FROM machines ORDER BY name`

// ListMachines returns all machines ordered by name.
func (r *CatalogRepository) ListMachines(ctx context.Context) ([]catalog.Machine, error) {
	rows, err := r.pool.Query(ctx, listMachinesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing machines: %w", err)
	}
	defer rows.Close()

	var machines []catalog.Machine
	for rows.Next() {
		var m catalog.Machine
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.ImageURL); err != nil {
			return nil, fmt.Errorf("scanning machine: %w", err)
		}
		machines = append(machines, m)
	}
	return machines, rows.Err()
}

const getMachineSQL = `SELECT id, name, description, image_url
	FROM machines WHERE id = $1`

// GetMachine returns a single machine by ID. It returns
// catalog.ErrMachineNotFound when no matching machine exists.
func (r *CatalogRepository) GetMachine(ctx context.Context, id string) (*catalog.Machine, error) {
	var m catalog.Machine
	err := r.pool.QueryRow(ctx, getMachineSQL, id).
		Scan(&m.ID, &m.Name, &m.Description, &m.ImageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrMachineNotFound
		}
		return nil, fmt.Errorf("getting machine %q: %w", id, err)
	}
	return &m, nil
}

const listPartsSQL = `SELECT id, machine_id, name, code, description, price, image_url
	FROM parts WHERE machine_id = $1 ORDER BY name`

// ListPartsByMachine returns all parts of one machine ordered by name.
func (r *CatalogRepository) ListPartsByMachine(ctx context.Context, machineID string) ([]catalog.Part, error) {
	rows, err := r.pool.Query(ctx, listPartsSQL, machineID)
	if err != nil {
		return nil, fmt.Errorf("listing parts for machine %q: %w", machineID, err)
	}
	defer rows.Close()

	var parts []catalog.Part
	for rows.Next() {
		var p catalog.Part
		if err := rows.Scan(&p.ID, &p.MachineID, &p.Name, &p.Code, &p.Description, &p.Price, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scanning part: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

const getPartSQL = `SELECT id, machine_id, name, code, description, price, image_url
	FROM parts WHERE id = $1`

// GetPart returns a single part by ID. It returns catalog.ErrPartNotFound
// when no matching part exists.
func (r *CatalogRepository) GetPart(ctx context.Context, id string) (*catalog.Part, error) {
	var p catalog.Part
	err := r.pool.QueryRow(ctx, getPartSQL, id).
		Scan(&p.ID, &p.MachineID, &p.Name, &p.Code, &p.Description, &p.Price, &p.ImageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrPartNotFound
		}
		return nil, fmt.Errorf("getting part %q: %w", id, err)
	}
	return &p, nil
}

const upsertMachineSQL = `INSERT INTO machines (id, name, description, image_url)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		image_url = EXCLUDED.image_url`

// UpsertMachine inserts or updates a machine.
func (r *CatalogRepository) UpsertMachine(ctx context.Context, m *catalog.Machine) error {
	_, err := r.pool.Exec(ctx, upsertMachineSQL, m.ID, m.Name, m.Description, m.ImageURL)
	if err != nil {
		return fmt.Errorf("upserting machine %q: %w", m.ID, err)
	}
	return nil
}

const upsertPartSQL = `INSERT INTO parts (id, machine_id, name, code, description, price, image_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		machine_id = EXCLUDED.machine_id,
		name = EXCLUDED.name,
		code = EXCLUDED.code,
		description = EXCLUDED.description,
		price = EXCLUDED.price,
		image_url = EXCLUDED.image_url`

// UpsertPart inserts or updates a part.
func (r *CatalogRepository) UpsertPart(ctx context.Context, p *catalog.Part) error {
	_, err := r.pool.Exec(ctx, upsertPartSQL,
		p.ID, p.MachineID, p.Name, p.Code, p.Description, p.Price, p.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("upserting part %q: %w", p.ID, err)
	}
	return nil
}
