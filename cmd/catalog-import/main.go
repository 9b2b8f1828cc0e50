// Command catalog-import loads supplier price lists into the parts table.
// Input files are gzipped JSON lines, one part per line:
//
//	{"machine_id": "...", "name": "...", "code": "...", "price": "123.45"}
//
// Files are parsed concurrently; duplicate part codes within a run keep the
// first occurrence.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/quickparts/storefront/internal/domain/catalog"
	"github.com/quickparts/storefront/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 50_000
	maxLineBytes  = 1 << 20
)

type partLine struct {
	ID          string          `json:"id"`
	MachineID   string          `json:"machine_id"`
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz price list files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files in %s", dataDir)
	}

	slog.Info("parsing price lists", slog.Int("files", len(files)))

	parts, err := parseFiles(ctx, files)
	if err != nil {
		return errors.Wrap(err, "parse price lists")
	}

	slog.Info("parts parsed", slog.Int("count", len(parts)))

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	repo := postgres.NewCatalogRepository(pool)
	for i := range parts {
		if err := repo.UpsertPart(ctx, &parts[i]); err != nil {
			return errors.Wrapf(err, "upsert part %s", parts[i].Code)
		}
	}

	slog.Info("parts upserted", slog.Int("count", len(parts)))
	return nil
}

// dedup tracks part codes already accepted in this run. The bloom filter
// answers the common negative case without touching the map.
type dedup struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	codes  map[string]struct{}
}

func newDedup() *dedup {
	return &dedup{
		filter: bloom.NewWithEstimates(bloomCapacity, bloomFPR),
		codes:  make(map[string]struct{}),
	}
}

// accept reports whether code is new, claiming it when it is.
func (d *dedup) accept(code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.filter.TestString(code) {
		if _, dup := d.codes[code]; dup {
			return false
		}
	}
	d.filter.AddString(code)
	d.codes[code] = struct{}{}
	return true
}

// parseFiles reads all files concurrently and returns the deduplicated parts.
func parseFiles(ctx context.Context, files []string) ([]catalog.Part, error) {
	var (
		mu  sync.Mutex
		out []catalog.Part
	)
	seen := newDedup()

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(func() error {
			parts, err := parseFile(ctx, f, seen)
			if err != nil {
				return errors.Wrapf(err, "parse %s", f)
			}
			mu.Lock()
			out = append(out, parts...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseFile(ctx context.Context, path string, seen *dedup) ([]catalog.Part, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "gzip reader")
	}
	defer gz.Close()

	var (
		out     []catalog.Part
		lines   int
		skipped int
	)
	sc := bufio.NewScanner(gz)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lines++
		if lines%progressEvery == 0 {
			slog.Info("progress", slog.String("file", filepath.Base(path)), slog.Int("lines", lines))
		}

		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var p partLine
		if err := json.Unmarshal(line, &p); err != nil {
			skipped++
			continue
		}
		if p.MachineID == "" || p.Name == "" || p.Code == "" || p.Price.IsNegative() {
			skipped++
			continue
		}
		if !seen.accept(p.Code) {
			skipped++
			continue
		}

		id := p.ID
		if id == "" {
			id = uuid.New().String()
		}
		out = append(out, catalog.Part{
			ID:          id,
			MachineID:   p.MachineID,
			Name:        p.Name,
			Code:        p.Code,
			Description: p.Description,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	slog.Info("file parsed",
		slog.String("file", filepath.Base(path)),
		slog.Int("lines", lines),
		slog.Int("accepted", len(out)),
		slog.Int("skipped", skipped),
	)
	return out, nil
}
