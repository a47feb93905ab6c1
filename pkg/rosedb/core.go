package rosedb

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// core holds the state and mutation logic shared by Store and AsyncStore.
// mu guards the data map only; a mutation and its persistence are not
// serialized against other mutations.
type core struct {
	*eventBus

	id       string
	life     *lifecycle
	pipe     *pipeline
	defaults Data
	logger   *slog.Logger

	initMu sync.Mutex

	mu   sync.RWMutex
	data Data
}

func newCore(opts Options) (*core, error) {
	r, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	logger := r.logger.With("store", id, "location", r.location)
	return &core{
		eventBus: newEventBus(logger),
		id:       id,
		life:     newLifecycle(logger),
		pipe:     &pipeline{backend: r.backend, codec: r.codec, cipher: r.cipher},
		defaults: r.defaults,
		logger:   logger,
	}, nil
}

// ID returns the random identifier attached to this store's log lines.
func (c *core) ID() string { return c.id }

// State returns the lifecycle state name.
func (c *core) State() string { return c.life.current() }

func (c *core) init(ctx context.Context) error {
	if err := c.life.requireUninitialized(); err != nil {
		return err
	}
	c.initMu.Lock()
	defer c.initMu.Unlock()
	if err := c.life.requireUninitialized(); err != nil {
		return err
	}

	data, ok, err := c.pipe.load(ctx)
	if err != nil {
		c.logger.Warn("loading persisted data failed", "err", err)
		return err
	}
	if !ok {
		if data, err = snapshot(c.defaults); err != nil {
			return fmt.Errorf("rosedb: copying default data: %w", err)
		}
	}
	c.logger.Debug("seeding data", "loaded", ok, "keys", len(data))

	if err := c.pipe.save(ctx, data); err != nil {
		c.logger.Warn("initial save failed", "err", err)
		return err
	}

	c.mu.Lock()
	c.data = data
	c.mu.Unlock()

	return c.life.initialize(context.WithoutCancel(ctx))
}

func (c *core) get(key string, def any) (any, error) {
	if err := c.life.requireInitialized(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return def, nil
}

func (c *core) has(key string) (bool, error) {
	if err := c.life.requireInitialized(); err != nil {
		return false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *core) snapshotData() (Data, error) {
	if err := c.life.requireInitialized(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return snapshot(c.data)
}

func (c *core) keys() ([]string, error) {
	if err := c.life.requireInitialized(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys, nil
}

func (c *core) length() (int, error) {
	if err := c.life.requireInitialized(); err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data), nil
}

func (c *core) set(ctx context.Context, key string, value any) error {
	if err := c.life.requireInitialized(); err != nil {
		return err
	}
	v, err := copyValue(value)
	if err != nil {
		return fmt.Errorf("rosedb: copying value of %q: %w", key, err)
	}
	return c.mutate(ctx, key, true, func(d Data) Data {
		d[key] = v
		return d
	})
}

func (c *core) delete(ctx context.Context, key string) error {
	if err := c.life.requireInitialized(); err != nil {
		return err
	}
	return c.mutate(ctx, key, true, func(d Data) Data {
		delete(d, key)
		return d
	})
}

func (c *core) clear(ctx context.Context) error {
	if err := c.life.requireInitialized(); err != nil {
		return err
	}
	return c.mutate(ctx, "", false, func(Data) Data {
		return Data{}
	})
}

func (c *core) reset(ctx context.Context) error {
	if err := c.life.requireInitialized(); err != nil {
		return err
	}
	fresh, err := snapshot(c.defaults)
	if err != nil {
		return fmt.Errorf("rosedb: copying default data: %w", err)
	}
	return c.mutate(ctx, "", false, func(Data) Data {
		return fresh
	})
}

// mutate swaps in the result of fn, publishes the change and then persists.
// A mutation that cannot be snapshotted is not applied and emits nothing.
// A failed save does not undo the mutation or the events.
func (c *core) mutate(ctx context.Context, key string, keyed bool, fn func(Data) Data) error {
	c.mu.Lock()
	data, ch, err := track(c.data, key, keyed, fn)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("rosedb: snapshotting change: %w", err)
	}
	c.data = data
	c.mu.Unlock()

	c.publish(ch)

	return c.persist(ctx)
}

func (c *core) persist(ctx context.Context) error {
	c.mu.RLock()
	view, err := snapshot(c.data)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("rosedb: snapshotting data: %w", err)
	}
	if err := c.pipe.save(ctx, view); err != nil {
		c.logger.Warn("persisting change failed", "err", err)
		return err
	}
	return nil
}
