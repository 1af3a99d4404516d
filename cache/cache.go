// Package cache keeps one record in memory and mirrors it to a Store.
//
// The stored value is loaded lazily on first access, exactly once. Updates
// are applied in memory immediately and written back after a quiet
// period, so a burst of updates results in a single write of the last
// value.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/bufferkit/bufferkit"
	"github.com/bufferkit/bufferkit/store"
)

const DefaultDelay = time.Second

var errSuperseded = errors.New("write superseded")

type Options struct {
	// Context bounds pending writes. Canceling it abandons them.
	Context context.Context

	// Delay is the quiet period after the last Update before the value is
	// written. Defaults to DefaultDelay.
	Delay time.Duration

	Logger  *slog.Logger
	Verbose bool

	// OnError is called with every failed load and write. Loads fall back
	// to the default value and writes are dropped either way.
	OnError func(err error)
}

// Cache holds a value of type T backed by one key of a Store. It is safe
// for concurrent use.
type Cache[T bufferkit.Record[T]] struct {
	context context.Context
	store   store.Store
	key     string
	delay   time.Duration
	logger  *slog.Logger
	verbose bool
	onError func(error)

	mu      sync.Mutex
	loaded  bool
	closed  bool
	value   T
	pending *write

	// writeMu serializes writes. digest is the hash of the bytes last read
	// from or written to the store. load sets it before any write can be
	// scheduled; afterwards it is only touched under writeMu.
	writeMu   sync.Mutex
	digest    uint64
	hasDigest bool

	wg sync.WaitGroup
}

type write struct {
	ctx    context.Context
	cancel context.CancelFunc
	data   []byte
}

// New returns an unloaded cache of key in st that holds def until the
// stored value is loaded. The cache does not close st.
func New[T bufferkit.Record[T]](st store.Store, key string, def T, o Options) *Cache[T] {
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return &Cache[T]{
		context: o.Context,
		store:   st,
		key:     key,
		delay:   o.Delay,
		logger:  o.Logger,
		verbose: o.Verbose,
		onError: o.OnError,
		value:   def,
	}
}

// NewFile returns a cache stored as a file named key in the per-user data
// directory of app (see store.DefaultDir).
func NewFile[T bufferkit.Record[T]](app, key string, def T, o Options) (*Cache[T], error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}
	dir, err := store.DefaultDir(app)
	if err != nil {
		return nil, err
	}
	st, err := store.NewDir(dir, store.DirOptions{})
	if err != nil {
		return nil, err
	}
	return New(st, key, def, o), nil
}

func (c *Cache[T]) Key() string {
	return c.key
}

// Loaded reports whether the value has been loaded from the store or set
// by Update.
func (c *Cache[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Get returns the current value. The first call loads it from the store
// and blocks until that completes; concurrent first calls wait for the
// same load. If nothing usable is stored, the default value is kept.
func (c *Cache[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.load()
		c.loaded = true
	}
	return c.value
}

func (c *Cache[T]) load() {
	data, err := c.store.Get(c.key)
	if errors.Is(err, store.ErrNotFound) {
		if c.verbose {
			c.logger.LogAttrs(c.context, slog.LevelDebug, "cache: nothing stored, using default", slog.String("key", c.key))
		}
		return
	} else if err != nil {
		c.fail(fmt.Errorf("cache: load %s: %w", c.key, err))
		return
	}

	v, err := bufferkit.Unmarshal[T](data)
	if err != nil {
		c.fail(fmt.Errorf("cache: discarding unreadable %s: %w", c.key, err))
		return
	}
	c.value = v
	c.digest, c.hasDigest = xxhash.Sum64(data), true
	if c.verbose {
		c.logger.LogAttrs(c.context, slog.LevelDebug, "cache: loaded", slog.String("key", c.key), slog.Int("size", len(data)))
	}
}

// Update replaces the value and schedules it to be written after the
// quiet period. A write still waiting from an earlier Update is canceled.
// After Close, Update only changes the in-memory value.
func (c *Cache[T]) Update(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = v
	c.loaded = true
	if c.pending != nil {
		c.pending.cancel()
		c.pending = nil
	}
	if c.closed {
		return
	}

	ctx, cancel := context.WithCancel(c.context)
	w := &write{ctx: ctx, cancel: cancel, data: v.Encode(nil)}
	c.pending = w
	c.wg.Add(1)
	go c.persistLater(w)
}

func (c *Cache[T]) persistLater(w *write) {
	defer c.wg.Done()
	defer w.cancel()

	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-w.ctx.Done():
		return
	case <-t.C:
	}
	_ = c.persist(w)
}

// persist writes w unless it has been canceled, in which case it returns
// errSuperseded without reporting it.
func (c *Cache[T]) persist(w *write) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	if c.pending == w {
		c.pending = nil
	}
	c.mu.Unlock()

	if w.ctx.Err() != nil {
		return errSuperseded
	}

	sum := xxhash.Sum64(w.data)
	if c.hasDigest && sum == c.digest {
		if c.verbose {
			c.logger.LogAttrs(c.context, slog.LevelDebug, "cache: unchanged, skipping write", slog.String("key", c.key))
		}
		return nil
	}

	if err := c.store.Put(c.key, w.data); err != nil {
		err = fmt.Errorf("cache: write %s: %w", c.key, err)
		c.fail(err)
		return err
	}
	c.digest, c.hasDigest = sum, true
	if c.verbose {
		c.logger.LogAttrs(c.context, slog.LevelDebug, "cache: wrote", slog.String("key", c.key), slog.Int("size", len(w.data)))
	}
	return nil
}

// Flush writes the value of the last Update now if it has not been written
// yet, instead of waiting for the quiet period.
func (c *Cache[T]) Flush() error {
	for {
		c.mu.Lock()
		w := c.pending
		c.mu.Unlock()
		if w == nil {
			return nil
		}

		err := c.persist(w)
		w.cancel()
		if err != nil && err != errSuperseded {
			return err
		}
	}
}

// Close abandons any write still waiting for its quiet period and waits
// for writes in progress to finish. It does not flush; call Flush first to
// keep the last update.
func (c *Cache[T]) Close() {
	c.mu.Lock()
	c.closed = true
	if c.pending != nil {
		c.pending.cancel()
		c.pending = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Cache[T]) fail(err error) {
	c.logger.LogAttrs(c.context, slog.LevelError, "cache: failed", slog.String("key", c.key), slog.Any("err", err))
	if c.onError != nil {
		c.onError(err)
	}
}
