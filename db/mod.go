// Package db implements the transactional engine of the key/value store.
//
// The engine combines the committed store, shared by every session, with the
// per-session stacks of nested transactions. A session buffers its writes in
// the overlay of its current transaction and nothing reaches the committed
// store before the outermost transaction of the session commits.
//
// Two strategies control how outermost commits of concurrent sessions
// relate. The pessimistic strategy takes an exclusive lock over the whole
// store when an outermost transaction begins and releases it when it closes,
// so that outermost transactions execute one at a time in real-time order.
// The permissive strategy never locks: concurrent sessions can read the same
// committed state, commit on top of each other and lose updates. The
// anomaly is the documented behavior of that strategy, not a bug of the
// engine.
//
// Documentation Last Review: 28.08.2026
package db

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.dedis.ch/tkv"
	"go.dedis.ch/tkv/store/mem"
	"golang.org/x/xerrors"
)

// ErrNoTransaction is the error returned by the operations that require an
// open transaction on the calling session when there is none.
var ErrNoTransaction = xerrors.New("no active transaction")

// Strategy is the type of the concurrency strategies of the engine.
type Strategy byte

const (
	// Pessimistic serializes the outermost transactions of all sessions with
	// an exclusive lock over the store.
	Pessimistic Strategy = iota

	// Permissive never locks the store and leaves concurrent outermost
	// commits exposed to lost updates.
	Permissive
)

func (s Strategy) String() string {
	switch s {
	case Pessimistic:
		return "pessimistic"
	case Permissive:
		return "permissive"
	default:
		return "unknown"
	}
}

// ParseStrategy returns the strategy matching the name.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "pessimistic":
		return Pessimistic, nil
	case "permissive":
		return Permissive, nil
	default:
		return 0, xerrors.Errorf("unknown strategy %q", name)
	}
}

// defines prometheus metrics
var (
	promBegun = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tkv_db_transactions_begun_total",
		Help: "total number of transactions begun",
	})

	promCommitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tkv_db_transactions_committed_total",
		Help: "total number of transactions committed",
	})

	promRolledBack = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tkv_db_transactions_rolledback_total",
		Help: "total number of transactions rolled back",
	})

	promLockHeld = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkv_db_store_lock_held",
		Help: "1 while an outermost pessimistic transaction holds the store",
	})
)

func init() {
	tkv.PromCollectors = append(tkv.PromCollectors, promBegun, promCommitted,
		promRolledBack, promLockHeld)
}

// DB is the engine of the store. It owns the committed mapping and the
// strategy, which are the only pieces of state shared between sessions.
type DB struct {
	// mutex is the engine-wide store lock of the pessimistic strategy. It is
	// never touched by the permissive strategy.
	mutex sync.Mutex

	store    *mem.Store
	strategy Strategy
	logger   zerolog.Logger
}

// NewSession returns a new session with its own empty transaction stack. A
// session must be used by a single goroutine: isolation of the nesting
// contexts comes from never sharing a session.
func (d *DB) NewSession() *Session {
	return &Session{db: d}
}

// Strategy returns the concurrency strategy of the engine.
func (d *DB) Strategy() Strategy {
	return d.strategy
}

// Get reads a key from the committed store, outside of any transaction.
// Under the pessimistic strategy the read waits until no outermost
// transaction holds the store, as the store is only safely readable while it
// is not being committed to.
func (d *DB) Get(key []byte) ([]byte, bool) {
	if d.strategy == Pessimistic {
		d.mutex.Lock()
		defer d.mutex.Unlock()
	}

	return d.store.Get(key)
}

// ForEach iterates over the committed pairs in an unspecified order. The
// iteration stops when the callback returns an error. Like Get, it waits
// under the pessimistic strategy until no outermost transaction holds the
// store.
func (d *DB) ForEach(fn func(key, value []byte) error) error {
	if d.strategy == Pessimistic {
		d.mutex.Lock()
		defer d.mutex.Unlock()
	}

	return d.store.ForEach(fn)
}

// Builder is a builder to create an engine with its initial state.
type Builder struct {
	initial  map[string][]byte
	strategy Strategy
}

// NewBuilder returns a new builder with the pessimistic strategy as the
// default.
func NewBuilder() *Builder {
	return &Builder{
		strategy: Pessimistic,
	}
}

// WithInitialData sets the pairs the committed store is populated with. The
// data is copied when the engine is built.
func (b *Builder) WithInitialData(data map[string][]byte) *Builder {
	b.initial = data

	return b
}

// WithStrategy sets the concurrency strategy of the engine.
func (b *Builder) WithStrategy(strategy Strategy) *Builder {
	b.strategy = strategy

	return b
}

// Build validates the configuration and returns a ready engine.
func (b *Builder) Build() (*DB, error) {
	switch b.strategy {
	case Pessimistic, Permissive:
	default:
		return nil, xerrors.Errorf("unknown strategy %d", b.strategy)
	}

	s := mem.NewStore()

	for key, value := range b.initial {
		err := s.Set([]byte(key), append([]byte{}, value...))
		if err != nil {
			return nil, xerrors.Errorf("couldn't populate store: %v", err)
		}
	}

	db := &DB{
		store:    s,
		strategy: b.strategy,
		logger:   tkv.Logger.With().Str("strategy", b.strategy.String()).Logger(),
	}

	return db, nil
}
