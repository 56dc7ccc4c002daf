// Package persistence provides SQLite storage for simulated households:
// one summary row per household, one row per vehicle, and the claim ledger.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/household-sim/internal/engine"
	"github.com/talgya/household-sim/internal/household"
)

// ErrNotFound is returned when a household row does not exist.
var ErrNotFound = errors.New("household not found")

// DB wraps a SQLite connection. It implements engine.Sink.
type DB struct {
	conn *sqlx.DB
}

var _ engine.Sink = (*DB)(nil)

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Writes come from one goroutine; a single connection keeps SQLite happy.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS households (
		id TEXT PRIMARY KEY,
		idx INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		inforce INTEGER NOT NULL,
		tenure INTEGER NOT NULL,
		row_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS vehicle_rows (
		household_id TEXT NOT NULL,
		vehicle_id TEXT NOT NULL,
		row_json TEXT NOT NULL,
		PRIMARY KEY (household_id, vehicle_id)
	);

	CREATE TABLE IF NOT EXISTS claims (
		id TEXT PRIMARY KEY,
		household_id TEXT NOT NULL,
		vehicle_id TEXT NOT NULL,
		driver_id TEXT,
		type TEXT NOT NULL,
		subtype TEXT NOT NULL,
		when_occurred INTEGER NOT NULL,
		bi INTEGER NOT NULL,
		pd INTEGER NOT NULL,
		coll INTEGER NOT NULL,
		comp INTEGER NOT NULL,
		mpc INTEGER NOT NULL,
		ers INTEGER NOT NULL,
		ubi INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_households_idx ON households(idx);
	CREATE INDEX IF NOT EXISTS idx_claims_household ON claims(household_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type claimRow struct {
	ID           string         `db:"id"`
	HouseholdID  string         `db:"household_id"`
	VehicleID    string         `db:"vehicle_id"`
	DriverID     sql.NullString `db:"driver_id"`
	Type         string         `db:"type"`
	Subtype      string         `db:"subtype"`
	WhenOccurred int            `db:"when_occurred"`
	BI           bool           `db:"bi"`
	PD           bool           `db:"pd"`
	Coll         bool           `db:"coll"`
	Comp         bool           `db:"comp"`
	MPC          bool           `db:"mpc"`
	ERS          bool           `db:"ers"`
	UBI          bool           `db:"ubi"`
}

// WriteHousehold stores a household's summary row, per-vehicle rows and
// claims in one transaction, replacing any earlier copy.
func (db *DB) WriteHousehold(ctx context.Context, index int, r engine.Result) error {
	h := r.Household

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"households", "vehicle_rows", "claims"} {
		col := "household_id"
		if table == "households" {
			col = "id"
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+col+" = ?", h.ID); err != nil {
			return err
		}
	}

	rowJSON, err := json.Marshal(r.Summary)
	if err != nil {
		return fmt.Errorf("marshal household %s: %w", h.ID, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO households (id, idx, seed, inforce, tenure, row_json) VALUES (?, ?, ?, ?, ?, ?)`,
		h.ID, index, r.Seed, h.Inforce, h.TenureYears, string(rowJSON),
	)
	if err != nil {
		return fmt.Errorf("insert household %s: %w", h.ID, err)
	}

	for _, row := range r.Vehicles {
		vehicleJSON, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshal vehicle row: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO vehicle_rows (household_id, vehicle_id, row_json) VALUES (?, ?, ?)`,
			h.ID, row["vehicle_id"], string(vehicleJSON),
		)
		if err != nil {
			return fmt.Errorf("insert vehicle row: %w", err)
		}
	}

	for _, c := range r.Claims {
		row := claimRow{
			ID:           c.ID,
			HouseholdID:  h.ID,
			VehicleID:    c.VehicleID,
			DriverID:     sql.NullString{String: c.DriverID, Valid: c.DriverID != ""},
			Type:         string(c.Type),
			Subtype:      c.Subtype,
			WhenOccurred: c.WhenOccurred,
			BI:           c.BI,
			PD:           c.PD,
			Coll:         c.Coll,
			Comp:         c.Comp,
			MPC:          c.MPC,
			ERS:          c.ERS,
			UBI:          c.UBI,
		}
		_, err := tx.NamedExecContext(ctx, `INSERT INTO claims
			(id, household_id, vehicle_id, driver_id, type, subtype, when_occurred,
			 bi, pd, coll, comp, mpc, ers, ubi)
			VALUES (:id, :household_id, :vehicle_id, :driver_id, :type, :subtype, :when_occurred,
			 :bi, :pd, :coll, :comp, :mpc, :ers, :ubi)`, row)
		if err != nil {
			return fmt.Errorf("insert claim %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("household saved", "household", h.ID, "index", index, "claims", len(r.Claims))
	return nil
}

// CountHouseholds returns the number of stored households.
func (db *DB) CountHouseholds(ctx context.Context) (int, error) {
	var n int
	err := db.conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM households")
	return n, err
}

// HouseholdInfo is the indexed part of a stored household.
type HouseholdInfo struct {
	ID      string `db:"id" json:"household_id"`
	Index   int    `db:"idx" json:"index"`
	Seed    int64  `db:"seed" json:"seed"`
	Inforce bool   `db:"inforce" json:"inforce"`
	Tenure  int    `db:"tenure" json:"household_tenure"`
}

// ListHouseholds returns stored households in run order.
func (db *DB) ListHouseholds(ctx context.Context, limit, offset int) ([]HouseholdInfo, error) {
	var out []HouseholdInfo
	err := db.conn.SelectContext(ctx, &out,
		"SELECT id, idx, seed, inforce, tenure FROM households ORDER BY idx LIMIT ? OFFSET ?",
		limit, offset,
	)
	return out, err
}

// LoadHouseholdRow returns the stored summary row of a household.
func (db *DB) LoadHouseholdRow(ctx context.Context, id string) (household.Record, error) {
	var raw string
	err := db.conn.GetContext(ctx, &raw, "SELECT row_json FROM households WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var row household.Record
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return nil, fmt.Errorf("decode household %s: %w", id, err)
	}
	return row, nil
}

// LoadVehicleRows returns the stored per-vehicle rows of a household.
func (db *DB) LoadVehicleRows(ctx context.Context, householdID string) ([]household.Record, error) {
	var raws []string
	err := db.conn.SelectContext(ctx, &raws,
		"SELECT row_json FROM vehicle_rows WHERE household_id = ? ORDER BY rowid", householdID)
	if err != nil {
		return nil, err
	}

	rows := make([]household.Record, 0, len(raws))
	for _, raw := range raws {
		var row household.Record
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, fmt.Errorf("decode vehicle row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ClaimCount returns how many claims are stored for a household.
func (db *DB) ClaimCount(ctx context.Context, householdID string) (int, error) {
	var n int
	err := db.conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM claims WHERE household_id = ?", householdID)
	return n, err
}

// SaveMeta stores a key-value pair in run metadata.
func (db *DB) SaveMeta(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO run_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, "SELECT value FROM run_meta WHERE key = ?", key)
	return value, err
}
