package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// DefaultKind is used when Config.Kind is empty.
const DefaultKind = "sqlite"

// DefaultPingTimeout bounds the connectivity check performed by Open.
const DefaultPingTimeout = 5 * time.Second

var (
	// ErrNoDSN is returned by Open when no data-source name is provided.
	ErrNoDSN = errors.New("storage: DSN is not provided")
	// ErrClosed is returned by operations on a closed Session.
	ErrClosed = errors.New("storage: session is closed")
	// ErrTxActive is returned by Begin when a transaction is already open.
	ErrTxActive = errors.New("storage: transaction already active")
)

// Config selects a backend and the data source to open.
type Config struct {
	// Kind is a registered dialect kind ("sqlite", "postgres", "mysql",
	// "mssql"). Empty means DefaultKind.
	Kind string
	// DSN is passed to the driver verbatim, e.g. "file:app.db" or ":memory:".
	DSN string
	// PingTimeout bounds the initial ping. Zero means DefaultPingTimeout.
	PingTimeout time.Duration
}

// openDB is a test hook that points to sqlx.Open by default.
var openDB = sqlx.Open

// Session is the single connection shared by every mapper operation in a
// process. It is not safe for concurrent use.
//
// Statements run in auto-commit mode unless the caller opens a transaction
// with Begin; Ext returns whichever handle is current.
type Session struct {
	db      *sqlx.DB
	tx      *sqlx.Tx
	dialect Dialect
	log     zerolog.Logger
	closed  bool
}

// Open resolves the dialect for cfg.Kind, opens the data source and verifies
// it with a ping. The pool is capped at one connection, so every statement
// (and SQLite's last_insert_rowid) sees the same connection state.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*Session, error) {
	kind := strings.TrimSpace(cfg.Kind)
	if kind == "" {
		kind = DefaultKind
	}
	dialect, err := Lookup(kind)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, ErrNoDSN
	}
	if err := dialect.ValidateDSN(cfg.DSN); err != nil {
		return nil, fmt.Errorf("storage: %s dsn: %w", kind, err)
	}

	db, err := openDB(dialect.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", kind, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", kind, err)
	}

	log = log.With().Str("storage", kind).Logger()
	log.Debug().Str("driver", dialect.DriverName()).Msg("session opened")

	return &Session{db: db, dialect: dialect, log: log}, nil
}

// Dialect returns the session's dialect.
func (s *Session) Dialect() Dialect { return s.dialect }

// DB returns the underlying handle.
func (s *Session) DB() *sqlx.DB { return s.db }

// Logger returns the session-scoped logger.
func (s *Session) Logger() zerolog.Logger { return s.log }

// Ext returns the handle operations should run on: the open transaction if
// there is one, otherwise the auto-commit connection.
func (s *Session) Ext() sqlx.ExtContext {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// InTx reports whether a transaction is open.
func (s *Session) InTx() bool { return s.tx != nil }

// Begin opens a transaction that subsequent Ext calls return until Commit,
// Rollback or Close.
func (s *Session) Begin(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if s.tx != nil {
		return ErrTxActive
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	s.tx = tx
	return nil
}

// Commit commits the open transaction. It is a no-op in auto-commit mode.
func (s *Session) Commit() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

// Rollback discards the open transaction. It is a no-op in auto-commit mode.
func (s *Session) Rollback() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("storage: rollback: %w", err)
	}
	return nil
}

// Close ends the session. With commit set, an open transaction is committed
// first; otherwise it is rolled back. Closing twice is a no-op.
func (s *Session) Close(commit bool) error {
	if s.closed {
		return nil
	}
	s.closed = true

	var txErr error
	if commit {
		txErr = s.Commit()
	} else {
		txErr = s.Rollback()
	}
	closeErr := s.db.Close()
	s.log.Debug().Bool("commit", commit).Msg("session closed")

	if err := errors.Join(txErr, closeErr); err != nil {
		return fmt.Errorf("storage: close: %w", err)
	}
	return nil
}
