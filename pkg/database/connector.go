package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"sync"
	"syscall"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// Connector is the process-level factory for store handles. It owns the
// currently bound store and the registry of sessions issued from it.
//
// Rebinding with Connect never touches sessions already handed out: they keep
// the store they were created on until they are closed. A store that is no
// longer current is closed together with its last session.
type Connector struct {
	mu       sync.Mutex
	log      *slog.Logger
	open     Opener
	current  *store
	sessions []*Session
}

type store struct {
	params Params
	drv    *entsql.Driver
	refs   int
}

type Option func(*Connector)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Connector) { c.log = l }
}

// WithOpener replaces the function that opens store handles.
func WithOpener(o Opener) Option {
	return func(c *Connector) { c.open = o }
}

func NewConnector(opts ...Option) *Connector {
	c := &Connector{
		log:  slog.Default(),
		open: openDriver,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect binds the connector to the store described by p. Calling it again
// with identical params is a no-op. When the attempt fails the previous
// binding, if any, stays in place.
func (c *Connector) Connect(ctx context.Context, p Params) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.params == p {
		return nil
	}

	drv, err := c.open(ctx, p)
	if err != nil {
		return fmt.Errorf("%w: connect %s: %w", ErrConnection, p, err)
	}

	prev := c.current
	c.current = &store{params: p, drv: drv}
	c.log.Info("database bound", "store", p.String(), "dialect", p.Dialect())

	if prev != nil && prev.refs == 0 {
		if err := prev.drv.Close(); err != nil {
			c.log.Warn("closing superseded store", "store", prev.params.String(), "error", err)
		}
	}
	return nil
}

// Connected reports whether a store is currently bound.
func (c *Connector) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Params returns the params of the bound store.
func (c *Connector) Params() (Params, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Params{}, false
	}
	return c.current.params, true
}

// Session creates a session on the bound store and registers it.
func (c *Connector) Session() (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil, fmt.Errorf("%w: no store bound", ErrConnection)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      c,
		store:     c.current,
	}
	c.current.refs++
	c.sessions = append(c.sessions, s)
	c.log.Debug("session opened", "session", id, "store", c.current.params.String())
	return s, nil
}

// Sessions lists the sessions that are still open.
func (c *Connector) Sessions() []*Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.sessions)
}

// Close closes every open session and the bound store.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, s := range slices.Clone(c.sessions) {
		errs = append(errs, c.release(s))
	}
	if c.current != nil {
		if c.current.drv != nil && c.current.refs == 0 {
			errs = append(errs, c.current.drv.Close())
		}
		c.current = nil
	}
	return errors.Join(errs...)
}

// release detaches s from the registry. Callers hold c.mu.
func (c *Connector) release(s *Session) error {
	idx := slices.Index(c.sessions, s)
	if idx < 0 {
		return nil
	}
	c.sessions = slices.Delete(c.sessions, idx, idx+1)
	s.closed = true
	s.store.refs--
	c.log.Debug("session closed", "session", s.ID)

	if s.store.refs == 0 && s.store != c.current {
		return s.store.drv.Close()
	}
	return nil
}

// Session is one handle through which read queries run. A session is bound to
// the store that was current when it was created. It is not safe for
// concurrent use.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	conn   *Connector
	store  *store
	closed bool
}

// Dialect returns the ent dialect of the session's store.
func (s *Session) Dialect() string {
	return s.store.params.Dialect()
}

// Params returns the params of the store this session runs against.
func (s *Session) Params() Params {
	return s.store.params
}

// Query runs a read statement and scans into rows. Connection level failures
// are reported as ErrConnection.
func (s *Session) Query(ctx context.Context, query string, args []any, rows *entsql.Rows) error {
	s.conn.mu.Lock()
	closed := s.closed
	s.conn.mu.Unlock()
	if closed {
		return fmt.Errorf("%w: session %s is closed", ErrConnection, s.ID)
	}

	if args == nil {
		args = []any{}
	}
	if err := s.store.drv.Query(ctx, query, args, rows); err != nil {
		if isConnectionFailure(err) {
			return fmt.Errorf("%w: %w", ErrConnection, err)
		}
		return err
	}
	return nil
}

// Close releases the session. Closing twice is a no-op.
func (s *Session) Close() error {
	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()
	return s.conn.release(s)
}

// isConnectionFailure reports errors that mean the store could not be reached
// or the handle could not be used, as opposed to a rejected statement. Pools
// dial lazily, so a store that goes away after Connect surfaces here as a
// network error.
func isConnectionFailure(err error) bool {
	var netErr net.Error
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.As(err, &netErr)
}
