package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/timelens/timelens/internal/event"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (meta, objects, attr_values, comments)
const currentSchemaVersion = 1

// DefaultSpace is the address-space qualifier used when a trace does
// not name one explicitly.
const DefaultSpace = "ram"

// Store is a snap-versioned object store backed by SQLite.
// See the package documentation for the locking and notification
// contracts.
type Store struct {
	db *sql.DB
	mu sync.RWMutex

	token string
	space string

	listenersMu sync.Mutex
	listeners   []func(event.Change)
}

// Option configures Open.
type Option func(*config)

type config struct {
	token string
	space string
}

// WithTraceToken fixes the trace token instead of generating one.
// Used by the conformance harness for deterministic golden traces.
func WithTraceToken(token string) Option {
	return func(c *config) { c.token = token }
}

// WithSpace sets the default address-space name for a new trace.
// Ignored when opening an existing trace.
func WithSpace(space string) Option {
	return func(c *config) { c.space = space }
}

// Open creates or opens a trace database at the given path.
// Use ":memory:" for an ephemeral store. Applies required pragmas and
// the schema automatically; idempotent on an existing trace.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := &config{space: DefaultSpace}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open trace database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to trace database: %w", err)
	}

	// SQLite supports one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY under our own guard discipline.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.initMeta(cfg); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// TraceToken returns the UUID identifying this trace.
func (s *Store) TraceToken() string {
	return s.token
}

// Space returns the trace's default address-space name.
func (s *Store) Space() string {
	return s.space
}

// Subscribe registers a listener for store change notifications.
// Listeners are invoked synchronously, in mutation order, while the
// mutating guard is still held; they must enqueue and return.
func (s *Store) Subscribe(fn func(event.Change)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify(ch event.Change) {
	s.listenersMu.Lock()
	listeners := s.listeners
	s.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(ch)
	}
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// initMeta loads the meta row, creating it for a fresh trace.
func (s *Store) initMeta(cfg *config) error {
	ctx := context.Background()

	var token, space string
	var version int
	err := s.db.QueryRowContext(ctx,
		`SELECT trace_token, space, schema_version FROM meta WHERE id = 0`,
	).Scan(&token, &space, &version)
	switch {
	case err == sql.ErrNoRows:
		token = cfg.token
		if token == "" {
			token = uuid.Must(uuid.NewV7()).String()
		}
		space = cfg.space
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO meta (id, trace_token, space, schema_version) VALUES (0, ?, ?, ?)`,
			token, space, currentSchemaVersion,
		)
		if err != nil {
			return fmt.Errorf("initialize trace meta: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read trace meta: %w", err)
	default:
		if version != currentSchemaVersion {
			return fmt.Errorf("unsupported trace schema version %d (want %d)", version, currentSchemaVersion)
		}
	}

	s.token = token
	s.space = space
	return nil
}
