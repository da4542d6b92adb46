// Package memory provides in-process device and product repositories backed by a
// transactional state store. Transactions work on a cloned state that replaces the
// committed state only when the transaction function succeeds.
package memory

import (
	"context"
	"sync"

	"github.com/devicehub/devicehub/internal/domain/device"
	"github.com/devicehub/devicehub/internal/domain/product"
)

type state struct {
	devices       map[uint]*device.Device
	products      map[uint]*product.Product
	nextDeviceID  uint
	nextProductID uint
}

func newState() *state {
	return &state{
		devices:       make(map[uint]*device.Device),
		products:      make(map[uint]*product.Product),
		nextDeviceID:  1,
		nextProductID: 1,
	}
}

func (s *state) clone() *state {
	c := &state{
		devices:       make(map[uint]*device.Device, len(s.devices)),
		products:      make(map[uint]*product.Product, len(s.products)),
		nextDeviceID:  s.nextDeviceID,
		nextProductID: s.nextProductID,
	}
	for k, v := range s.devices {
		c.devices[k] = v.Clone()
	}
	for k, v := range s.products {
		c.products[k] = v.Clone()
	}
	return c
}

type txKey struct{}

type transaction struct {
	state *state
}

// Store holds the committed state shared by the memory repositories
type Store struct {
	mu    sync.RWMutex
	state *state
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{state: newState()}
}

// RunInTransaction runs fn against a private copy of the state and commits it when fn succeeds.
// Transactions are serialized. A call made inside a transaction joins it.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*transaction); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// read runs fn against the transaction state in ctx, or the committed state under a read lock
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if tx, ok := ctx.Value(txKey{}).(*transaction); ok {
		return fn(tx.state)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// write runs fn inside the transaction in ctx, or inside a new single-statement transaction
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if tx, ok := ctx.Value(txKey{}).(*transaction); ok {
		return fn(tx.state)
	}
	return s.RunInTransaction(ctx, func(txCtx context.Context) error {
		return fn(txCtx.Value(txKey{}).(*transaction).state)
	})
}
