package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/platform/db"
	"shipment-dispatch-service/internal/platform/obs"
)

// Geocode cache stored in the geocode_cache table, the durable layer under
// the redis and in-process caches. Driver selects the placeholder style.
type SQLGeocodeCache struct {
	DB     *sql.DB
	Driver string
}

func NewSQLGeocodeCache(conn *sql.DB, driver string) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: conn, Driver: driver}
}

// GetMany returns hits only; misses are simply absent from the map.
func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.sql.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("sql geocode cache: no database handle")
	}

	uniq := uniqueAddresses(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	args := make([]any, len(uniq))
	for i, a := range uniq {
		args[i] = a
	}

	// Only placeholders are spliced in; the addresses stay bound parameters.
	q := `SELECT address, lon, lat FROM geocode_cache WHERE address IN (` +
		strings.TrimSuffix(strings.Repeat("?,", len(uniq)), ",") + `)`

	rows, err := s.DB.QueryContext(ctx, db.Rebind(s.Driver, q), args...)
	if err != nil {
		return nil, fmt.Errorf("sql geocode cache: lookup %d addresses: %w", len(uniq), err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates, len(uniq))
	for rows.Next() {
		var (
			addr string
			c    domain.Coordinates
		)
		if err := rows.Scan(&addr, &c.Lon, &c.Lat); err != nil {
			return nil, fmt.Errorf("sql geocode cache: scan: %w", err)
		}
		out[addr] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sql geocode cache: rows: %w", err)
	}

	return out, nil
}

// PutMany upserts every entry in one transaction.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "geocode.cache.sql.PutMany")(&err)

	if s.DB == nil {
		return errors.New("sql geocode cache: no database handle")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sql geocode cache: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, db.Rebind(s.Driver, upsertGeocodeSQL))
	if err != nil {
		return fmt.Errorf("sql geocode cache: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for addr, c := range results {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return fmt.Errorf("sql geocode cache: blank address: %w", domain.ErrInvalid)
		}

		if _, err := stmt.ExecContext(ctx, addr, c.Lon, c.Lat); err != nil {
			return fmt.Errorf("sql geocode cache: upsert %q: %w", addr, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sql geocode cache: commit: %w", err)
	}

	return nil
}

const upsertGeocodeSQL = `
INSERT INTO geocode_cache (address, lon, lat) VALUES (?, ?, ?)
ON CONFLICT (address) DO UPDATE SET lon = excluded.lon, lat = excluded.lat`

// uniqueAddresses trims, drops blanks and removes duplicates, keeping first-seen order.
func uniqueAddresses(addresses []string) []string {
	seen := make(map[string]bool, len(addresses))
	var out []string
	for _, raw := range addresses {
		addr := strings.TrimSpace(raw)
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}
