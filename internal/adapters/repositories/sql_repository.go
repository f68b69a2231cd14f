package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"shipment-dispatch-service/internal/domain"
	"shipment-dispatch-service/internal/platform/db"
	"shipment-dispatch-service/internal/platform/obs"
)

// SQL-backed implementation of the TruckRepository and ShipmentRepository ports.
// Queries are written with '?' placeholders and rebound for postgres.
type SQLRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLRepository(conn *sql.DB, driver string) *SQLRepository {
	return &SQLRepository{DB: conn, Driver: driver}
}

func (s *SQLRepository) rebind(q string) string {
	return db.Rebind(s.Driver, q)
}

func (s *SQLRepository) check() error {
	if s.DB == nil {
		return errors.New("sql repository: DB is nil")
	}
	return nil
}

// Return all trucks ordered by registration number.
func (s *SQLRepository) ListTrucks(ctx context.Context) (_ []*domain.Truck, err error) {
	defer obs.Time(ctx, "repo.ListTrucks")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	query := `
	SELECT
		truck_id,
		registration_number,
		capacity_kg,
		capacity_volume
	FROM trucks
	ORDER BY registration_number;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list trucks: query trucks table: %w", err)
	}
	defer rows.Close()

	trucks := make([]*domain.Truck, 0, 16)
	for rows.Next() {
		var t domain.Truck
		if err := rows.Scan(&t.TruckID, &t.RegistrationNumber, &t.CapacityKg, &t.CapacityVolume); err != nil {
			return nil, fmt.Errorf("list trucks: scan row: %w", err)
		}
		trucks = append(trucks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trucks: row iteration: %w", err)
	}

	return trucks, nil
}

// Insert trucks in a single transaction.
func (s *SQLRepository) CreateTrucks(ctx context.Context, trucks []*domain.Truck) (err error) {
	defer obs.Time(ctx, "repo.CreateTrucks")(&err)

	if err := s.check(); err != nil {
		return err
	}
	if len(trucks) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create trucks: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO trucks (
		truck_id,
		registration_number,
		capacity_kg,
		capacity_volume
	)
	VALUES (?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("create trucks: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range trucks {
		if _, err := stmt.ExecContext(ctx, t.TruckID, t.RegistrationNumber, t.CapacityKg, t.CapacityVolume); err != nil {
			return fmt.Errorf("create trucks: insert registration_number=%q: %w", t.RegistrationNumber, mapWriteErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create trucks: commit tx: %w", err)
	}

	return nil
}

func (s *SQLRepository) DeleteTruck(ctx context.Context, truckID string) (err error) {
	defer obs.Time(ctx, "repo.DeleteTruck")(&err)

	return s.deleteOne(ctx, "delete truck", `DELETE FROM trucks WHERE truck_id = ?;`, truckID)
}

const shipmentColumns = `
		shipment_id,
		origin_address,
		destination_address,
		weight,
		volume,
		origin_lat,
		origin_lng,
		destination_lat,
		destination_lng,
		assigned_vehicle
`

// Return all shipments ordered by id.
func (s *SQLRepository) ListShipments(ctx context.Context) (_ []*domain.Shipment, err error) {
	defer obs.Time(ctx, "repo.ListShipments")(&err)

	return s.queryShipments(ctx, "list shipments", `
	SELECT`+shipmentColumns+`
	FROM shipments
	ORDER BY shipment_id;
	`)
}

// Return shipments missing any coordinate.
func (s *SQLRepository) ListUngeocodedShipments(ctx context.Context) (_ []*domain.Shipment, err error) {
	defer obs.Time(ctx, "repo.ListUngeocodedShipments")(&err)

	return s.queryShipments(ctx, "list ungeocoded shipments", `
	SELECT`+shipmentColumns+`
	FROM shipments
	WHERE origin_lat IS NULL
		OR origin_lng IS NULL
		OR destination_lat IS NULL
		OR destination_lng IS NULL
	ORDER BY shipment_id;
	`)
}

func (s *SQLRepository) queryShipments(ctx context.Context, op, query string, args ...any) ([]*domain.Shipment, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query shipments table: %w", op, err)
	}
	defer rows.Close()

	shipments := make([]*domain.Shipment, 0, 64)
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		shipments = append(shipments, sh)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return shipments, nil
}

func scanShipment(rows *sql.Rows) (*domain.Shipment, error) {
	var (
		sh                     domain.Shipment
		origin, destination    string
		oLat, oLng, dLat, dLng sql.NullFloat64
		vehicle                sql.NullString
	)

	err := rows.Scan(
		&sh.ShipmentID,
		&origin,
		&destination,
		&sh.Weight,
		&sh.Volume,
		&oLat, &oLng,
		&dLat, &dLng,
		&vehicle,
	)
	if err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	if err := json.Unmarshal([]byte(origin), &sh.Origin); err != nil {
		return nil, fmt.Errorf("shipment_id=%s: decode origin address: %w", sh.ShipmentID, err)
	}
	if err := json.Unmarshal([]byte(destination), &sh.Destination); err != nil {
		return nil, fmt.Errorf("shipment_id=%s: decode destination address: %w", sh.ShipmentID, err)
	}

	if oLat.Valid && oLng.Valid {
		sh.OriginCoords = &domain.Coordinates{Lon: oLng.Float64, Lat: oLat.Float64}
	}
	if dLat.Valid && dLng.Valid {
		sh.DestinationCoords = &domain.Coordinates{Lon: dLng.Float64, Lat: dLat.Float64}
	}
	if vehicle.Valid {
		v := vehicle.String
		sh.AssignedVehicle = &v
	}

	return &sh, nil
}

// Insert shipments in a single transaction.
func (s *SQLRepository) CreateShipments(ctx context.Context, shipments []*domain.Shipment) (err error) {
	defer obs.Time(ctx, "repo.CreateShipments")(&err)

	if err := s.check(); err != nil {
		return err
	}
	if len(shipments) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create shipments: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO shipments (
		shipment_id,
		origin_address,
		destination_address,
		weight,
		volume,
		origin_lat,
		origin_lng,
		destination_lat,
		destination_lng,
		assigned_vehicle
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("create shipments: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sh := range shipments {
		origin, err := json.Marshal(sh.Origin)
		if err != nil {
			return fmt.Errorf("create shipments: encode origin shipment_id=%s: %w", sh.ShipmentID, err)
		}
		destination, err := json.Marshal(sh.Destination)
		if err != nil {
			return fmt.Errorf("create shipments: encode destination shipment_id=%s: %w", sh.ShipmentID, err)
		}

		oLat, oLng := coordArgs(sh.OriginCoords)
		dLat, dLng := coordArgs(sh.DestinationCoords)

		var vehicle sql.NullString
		if sh.AssignedVehicle != nil {
			vehicle = sql.NullString{String: *sh.AssignedVehicle, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			sh.ShipmentID,
			string(origin),
			string(destination),
			sh.Weight,
			sh.Volume,
			oLat, oLng,
			dLat, dLng,
			vehicle,
		); err != nil {
			return fmt.Errorf("create shipments: insert shipment_id=%s: %w", sh.ShipmentID, mapWriteErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create shipments: commit tx: %w", err)
	}

	return nil
}

func (s *SQLRepository) DeleteShipment(ctx context.Context, shipmentID string) (err error) {
	defer obs.Time(ctx, "repo.DeleteShipment")(&err)

	return s.deleteOne(ctx, "delete shipment", `DELETE FROM shipments WHERE shipment_id = ?;`, shipmentID)
}

// Set assigned_vehicle for every assignment in one transaction.
func (s *SQLRepository) SaveAssignments(ctx context.Context, assignments []domain.Assignment) (err error) {
	defer obs.Time(ctx, "repo.SaveAssignments")(&err)

	if err := s.check(); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save assignments: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
	UPDATE shipments
	SET assigned_vehicle = ?,
		updated_at = CURRENT_TIMESTAMP
	WHERE shipment_id = ?;
	`))
	if err != nil {
		return fmt.Errorf("save assignments: prepare update: %w", err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx, a.TruckNumber, a.ShipmentID); err != nil {
			return fmt.Errorf("save assignments: update shipment_id=%s: %w", a.ShipmentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save assignments: commit tx: %w", err)
	}

	return nil
}

// Write resolved coordinates in one transaction. Nil sides keep their stored value.
func (s *SQLRepository) SaveCoordinates(ctx context.Context, coords []domain.ShipmentCoordinates) (err error) {
	defer obs.Time(ctx, "repo.SaveCoordinates")(&err)

	if err := s.check(); err != nil {
		return err
	}
	if len(coords) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save coordinates: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
	UPDATE shipments
	SET origin_lat = COALESCE(?, origin_lat),
		origin_lng = COALESCE(?, origin_lng),
		destination_lat = COALESCE(?, destination_lat),
		destination_lng = COALESCE(?, destination_lng),
		updated_at = CURRENT_TIMESTAMP
	WHERE shipment_id = ?;
	`))
	if err != nil {
		return fmt.Errorf("save coordinates: prepare update: %w", err)
	}
	defer stmt.Close()

	for _, c := range coords {
		oLat, oLng := coordArgs(c.Origin)
		dLat, dLng := coordArgs(c.Destination)
		if _, err := stmt.ExecContext(ctx, oLat, oLng, dLat, dLng, c.ShipmentID); err != nil {
			return fmt.Errorf("save coordinates: update shipment_id=%s: %w", c.ShipmentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save coordinates: commit tx: %w", err)
	}

	return nil
}

func (s *SQLRepository) deleteOne(ctx context.Context, op, query, id string) error {
	if err := s.check(); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, s.rebind(query), id)
	if err != nil {
		return fmt.Errorf("%s %q: %w", op, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %q: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", op, id, domain.ErrNotFound)
	}

	return nil
}

func coordArgs(c *domain.Coordinates) (lat, lng sql.NullFloat64) {
	if c == nil {
		return lat, lng
	}
	return sql.NullFloat64{Float64: c.Lat, Valid: true}, sql.NullFloat64{Float64: c.Lon, Valid: true}
}

// mapWriteErr turns unique/primary key violations into domain.ErrConflict.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Detail)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %s", domain.ErrConflict, liteErr.Error())
		case sqlite3.SQLITE_CONSTRAINT:
			if strings.Contains(liteErr.Error(), "UNIQUE constraint failed") {
				return fmt.Errorf("%w: %s", domain.ErrConflict, liteErr.Error())
			}
		}
	}

	return err
}
