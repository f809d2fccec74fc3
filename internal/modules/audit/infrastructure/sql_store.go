package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"hotelReservas/internal/modules/audit/domain"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// fixed width so lexical order on created_at matches time order
	timeLayout = "2006-01-02T15:04:05.000000000Z"

	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

var ErrUnsupportedDriver = errors.New("unsupported audit driver")

const schema = `
CREATE TABLE IF NOT EXISTS reservation_audit (
	id TEXT PRIMARY KEY,
	operation TEXT NOT NULL,
	reservation_id TEXT NOT NULL DEFAULT '',
	actor TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
)`

const createdAtIndex = `CREATE INDEX IF NOT EXISTS reservation_audit_created_at ON reservation_audit (created_at)`

type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

type entryRow struct {
	ID            string `db:"id"`
	Operation     string `db:"operation"`
	ReservationID string `db:"reservation_id"`
	Actor         string `db:"actor"`
	Outcome       string `db:"outcome"`
	Message       string `db:"message"`
	CreatedAt     string `db:"created_at"`
}

// Open connects to dsn with the given driver and creates the schema.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	if driver == DriverSQLite {
		// ":memory:" databases live per connection
		db.SetMaxOpenConns(1)
	}
	store, err := NewSQLStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open handle and ensures the schema exists. Placeholders follow db's driver.
func NewSQLStore(ctx context.Context, db *sqlx.DB) (*SQLStore, error) {
	store := &SQLStore{db: db, now: time.Now}
	for _, stmt := range []string{schema, createdAtIndex} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create audit schema: %w", err)
		}
	}
	return store, nil
}

// WithClock overrides the timestamp source.
func (s *SQLStore) WithClock(now func() time.Time) *SQLStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Append stores entry, filling the id and creation time when missing.
func (s *SQLStore) Append(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	if strings.TrimSpace(entry.Operation) == "" {
		return domain.Entry{}, errors.New("audit entry without operation")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	if entry.Outcome == "" {
		entry.Outcome = domain.OutcomeSuccess
	}

	row := entryRow{
		ID:            entry.ID,
		Operation:     entry.Operation,
		ReservationID: entry.ReservationID,
		Actor:         entry.Actor,
		Outcome:       string(entry.Outcome),
		Message:       entry.Message,
		CreatedAt:     entry.CreatedAt.Format(timeLayout),
	}
	query := `INSERT INTO reservation_audit (id, operation, reservation_id, actor, outcome, message, created_at)
		VALUES (:id, :operation, :reservation_id, :actor, :outcome, :message, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return domain.Entry{}, fmt.Errorf("insert audit entry: %w", err)
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first. Non-positive limits use the default.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	var rows []entryRow
	query := s.db.Rebind(`SELECT id, operation, reservation_id, actor, outcome, message, created_at
		FROM reservation_audit ORDER BY created_at DESC, id DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}

	entries := make([]domain.Entry, 0, len(rows))
	for _, row := range rows {
		createdAt, err := time.Parse(timeLayout, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse audit timestamp %q: %w", row.CreatedAt, err)
		}
		entries = append(entries, domain.Entry{
			ID:            row.ID,
			Operation:     row.Operation,
			ReservationID: row.ReservationID,
			Actor:         row.Actor,
			Outcome:       domain.Outcome(row.Outcome),
			Message:       row.Message,
			CreatedAt:     createdAt,
		})
	}
	return entries, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
