// Package sqlite implements the LCI store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"hsclci/internal/domain"
)

// Store implements repository.Store using SQLite
type Store struct {
	db *sql.DB
}

// Open creates a new SQLite store, migrating the schema on open
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles one writer at a time; a single connection also
	// keeps in-memory databases coherent across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS databases (
		name TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS activities (
		code TEXT PRIMARY KEY,
		database TEXT NOT NULL,
		name TEXT NOT NULL,
		reference_product TEXT,
		location TEXT,
		unit TEXT,
		production_amount REAL NOT NULL DEFAULT 1,
		comment TEXT,
		data JSON,
		FOREIGN KEY (database) REFERENCES databases(name) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		activity_code TEXT NOT NULL,
		name TEXT NOT NULL,
		database TEXT,
		product TEXT,
		location TEXT,
		amount REAL NOT NULL,
		unit TEXT,
		categories TEXT,
		type TEXT NOT NULL,
		input_database TEXT,
		input_code TEXT,
		FOREIGN KEY (activity_code) REFERENCES activities(code) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_activities_database ON activities(database);
	CREATE INDEX IF NOT EXISTS idx_activities_name ON activities(name);
	CREATE INDEX IF NOT EXISTS idx_exchanges_activity ON exchanges(activity_code);
	`

	_, err := s.db.Exec(schema)
	return err
}

// ListDatabases returns the names of all databases in the store
func (s *Store) ListDatabases(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM databases ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan database name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// HasDatabase reports whether a database exists in the store
func (s *Store) HasDatabase(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM databases WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check database %q: %w", name, err)
	}
	return count > 0, nil
}

// LoadDatasets loads all activity records of a database, without their
// exchanges. This is the shape supplier resolution and linking need.
func (s *Store) LoadDatasets(ctx context.Context, name string) ([]*domain.Dataset, error) {
	exists, err := s.HasDatabase(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDatabaseNotFound, name)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, reference_product, location, unit, production_amount, comment
		FROM activities WHERE database = ?
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var datasets []*domain.Dataset
	for rows.Next() {
		var r activityRow
		if err := rows.Scan(r.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		datasets = append(datasets, r.toDomain(name))
	}
	return datasets, rows.Err()
}

// LoadDatabase loads the activity records of a database together with
// their exchanges
func (s *Store) LoadDatabase(ctx context.Context, name string) ([]*domain.Dataset, error) {
	datasets, err := s.LoadDatasets(ctx, name)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]*domain.Dataset, len(datasets))
	for _, ds := range datasets {
		byCode[ds.Code] = ds
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.activity_code, e.name, e.database, e.product, e.location,
		       e.amount, e.unit, e.categories, e.type, e.input_database, e.input_code
		FROM exchanges e
		JOIN activities a ON a.code = e.activity_code
		WHERE a.database = ?
		ORDER BY e.id
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r exchangeRow
		if err := rows.Scan(r.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		if ds := byCode[r.ActivityCode]; ds != nil {
			ds.AddExchange(r.toDomain())
		}
	}
	return datasets, rows.Err()
}

// LoadBiosphereFlows loads the elementary flows of a biosphere database
func (s *Store) LoadBiosphereFlows(ctx context.Context, name string) ([]domain.BiosphereFlow, error) {
	exists, err := s.HasDatabase(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDatabaseNotFound, name)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, unit, data FROM activities WHERE database = ?
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query biosphere flows: %w", err)
	}
	defer rows.Close()

	var flows []domain.BiosphereFlow
	for rows.Next() {
		var (
			code, flowName string
			unit           sql.NullString
			data           sql.NullString
		)
		if err := rows.Scan(&code, &flowName, &unit, &data); err != nil {
			return nil, fmt.Errorf("failed to scan biosphere flow: %w", err)
		}

		flow := domain.BiosphereFlow{
			Name:     flowName,
			Unit:     nullToString(unit),
			Code:     code,
			Database: name,
		}
		if cats, err := categoriesFromJSON(data); err != nil {
			return nil, fmt.Errorf("failed to decode categories for %q: %w", flowName, err)
		} else if cats != nil {
			flow.Categories = *cats
		}
		flows = append(flows, flow)
	}
	return flows, rows.Err()
}

// WriteDatabase replaces a database with the given datasets in one
// transaction. An existing database of the same name is deleted first.
func (s *Store) WriteDatabase(ctx context.Context, name string, datasets []*domain.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM databases WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO databases (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("failed to insert database: %w", err)
	}

	for _, ds := range datasets {
		args, err := activityInsertArgs(name, ds)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO activities
			(code, database, name, reference_product, location, unit, production_amount, comment, data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, args...); err != nil {
			return fmt.Errorf("failed to insert activity %q: %w", ds.Name, err)
		}

		for _, exc := range ds.Exchanges {
			excArgs, err := exchangeInsertArgs(ds.Code, exc)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO exchanges
				(activity_code, name, database, product, location, amount, unit, categories, type, input_database, input_code)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, excArgs...); err != nil {
				return fmt.Errorf("failed to insert exchange %q: %w", exc.Name, err)
			}
		}
	}

	return tx.Commit()
}

// ImportBiosphere writes a biosphere flow list as a database. Flows are
// stored as activities with their categories in the JSON payload.
func (s *Store) ImportBiosphere(ctx context.Context, name string, flows []domain.BiosphereFlow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM databases WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO databases (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("failed to insert database: %w", err)
	}

	for _, f := range flows {
		code := f.Code
		if code == "" {
			code = domain.NewCode()
		}
		data, err := categoriesToJSON(f.Categories)
		if err != nil {
			return fmt.Errorf("failed to encode categories for %q: %w", f.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO activities (code, database, name, unit, production_amount, data)
			VALUES (?, ?, ?, ?, 0, ?)
		`, code, name, f.Name, f.Unit, data); err != nil {
			return fmt.Errorf("failed to insert biosphere flow %q: %w", f.Name, err)
		}
	}

	return tx.Commit()
}

// CountDatasets returns the number of activities in a database
func (s *Store) CountDatasets(ctx context.Context, name string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activities WHERE database = ?`, name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count datasets: %w", err)
	}
	return count, nil
}

// CountExchanges returns the number of exchanges across a database
func (s *Store) CountExchanges(ctx context.Context, name string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM exchanges e
		JOIN activities a ON a.code = e.activity_code
		WHERE a.database = ?
	`, name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count exchanges: %w", err)
	}
	return count, nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	return s.db.Close()
}
