package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"BillScanner/internal/domain"
	"BillScanner/internal/ports"
)

const (
	billsTable = "tracked_bills"
	metaTable  = "scan_meta"
)

var billColumns = []string{
	"id", "bill_number", "title", "author", "committees", "status",
	"analysis_status", "priority", "date_added", "notes", "summary",
	"last_action", "url",
}

// SQLStore persists tracked bills in SQLite or Postgres. Rows are only ever
// inserted, so columns edited by curators survive every scan.
type SQLStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.BillStore = (*SQLStore)(nil)

// OpenSQLStore opens a database for driver ("sqlite" or "postgres") and
// creates the schema when it is missing.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	store, err := NewSQLStore(ctx, db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wires an existing *sql.DB.
func NewSQLStore(ctx context.Context, db *sql.DB, driver string) (*SQLStore, error) {
	store := &SQLStore{
		db:      db,
		builder: builderFor(driver),
	}
	if err := store.migrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func builderFor(driver string) sq.StatementBuilderType {
	if driver == "postgres" {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tracked_bills (
			id INTEGER PRIMARY KEY,
			bill_number TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			committees TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT '',
			analysis_status TEXT NOT NULL DEFAULT 'needs-analysis',
			priority TEXT NOT NULL DEFAULT 'medium',
			date_added TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			last_action TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS scan_meta (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Load reads every tracked bill ordered by id.
func (s *SQLStore) Load(ctx context.Context) (domain.Collection, error) {
	query, args, err := s.builder.Select(billColumns...).From(billsTable).OrderBy("id").ToSql()
	if err != nil {
		return domain.Collection{}, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("query bills: %w", err)
	}

	var collection domain.Collection
	for rows.Next() {
		var (
			bill       domain.TrackedBill
			committees string
		)
		if err := rows.Scan(
			&bill.ID, &bill.BillNumber, &bill.Title, &bill.Author, &committees, &bill.Status,
			&bill.AnalysisStatus, &bill.Priority, &bill.DateAdded, &bill.Notes, &bill.Summary,
			&bill.LastAction, &bill.URL,
		); err != nil {
			_ = rows.Close()
			return domain.Collection{}, fmt.Errorf("scan bill: %w", err)
		}
		if err := json.Unmarshal([]byte(committees), &bill.Committees); err != nil {
			_ = rows.Close()
			return domain.Collection{}, fmt.Errorf("decode committees for %s: %w", bill.BillNumber, err)
		}
		collection.Bills = append(collection.Bills, bill)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return domain.Collection{}, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return domain.Collection{}, fmt.Errorf("close rows: %w", closeErr)
	}

	lastUpdated, err := s.lastUpdated(ctx)
	if err != nil {
		return domain.Collection{}, err
	}
	collection.LastUpdated = lastUpdated

	return collection, nil
}

func (s *SQLStore) lastUpdated(ctx context.Context) (time.Time, error) {
	query, args, err := s.builder.Select("value").From(metaTable).Where(sq.Eq{"name": "last_updated"}).ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("build meta select: %w", err)
	}

	var raw string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query last_updated: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last_updated: %w", err)
	}
	return ts, nil
}

// Save inserts bills whose bill number is not stored yet and refreshes
// last_updated, all in one transaction. Inserted ids always exceed the
// largest stored id.
func (s *SQLStore) Save(ctx context.Context, collection domain.Collection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := s.insertMissing(ctx, tx, collection.Bills); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := s.touch(ctx, tx, collection.LastUpdated); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLStore) insertMissing(ctx context.Context, tx *sql.Tx, bills []domain.TrackedBill) error {
	if len(bills) == 0 {
		return nil
	}

	numbers := make([]string, len(bills))
	for i, b := range bills {
		numbers[i] = b.BillNumber
	}

	query, args, err := s.builder.Select("bill_number").From(billsTable).Where(sq.Eq{"bill_number": numbers}).ToSql()
	if err != nil {
		return fmt.Errorf("build existing select: %w", err)
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query existing: %w", err)
	}
	stored := map[string]bool{}
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan bill number: %w", err)
		}
		stored[number] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("rows iteration: %w", err)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close rows: %w", err)
	}

	maxID, err := s.maxID(ctx, tx)
	if err != nil {
		return err
	}

	insert := s.builder.Insert(billsTable).Columns(billColumns...)
	pending := 0
	nextID := maxID + 1
	for _, b := range bills {
		if stored[b.BillNumber] {
			continue
		}
		// Ids below the stored maximum come from a collection that failed to
		// load; shift them past it, keeping their order.
		if b.ID < nextID {
			b.ID = nextID
		}
		nextID = b.ID + 1
		committees, err := json.Marshal(nonNil(b.Committees))
		if err != nil {
			return fmt.Errorf("encode committees for %s: %w", b.BillNumber, err)
		}
		insert = insert.Values(
			b.ID, b.BillNumber, b.Title, b.Author, string(committees), b.Status,
			string(b.AnalysisStatus), string(b.Priority), b.DateAdded, b.Notes, b.Summary,
			b.LastAction, b.URL,
		)
		pending++
	}
	if pending == 0 {
		return nil
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert bills: %w", err)
	}
	return nil
}

func (s *SQLStore) maxID(ctx context.Context, tx *sql.Tx) (int, error) {
	query, args, err := s.builder.Select("COALESCE(MAX(id), 0)").From(billsTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build max id select: %w", err)
	}

	var maxID int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("query max id: %w", err)
	}
	return maxID, nil
}

func (s *SQLStore) touch(ctx context.Context, tx *sql.Tx, ts time.Time) error {
	query, args, err := s.builder.Insert(metaTable).
		Columns("name", "value").
		Values("last_updated", ts.Format(time.RFC3339Nano)).
		Suffix("ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build meta upsert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert last_updated: %w", err)
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
