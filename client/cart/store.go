package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StorageKey is the fixed key the cart is persisted under.
const StorageKey = "vibe-bites-cart"

// Store owns the current cart state. Every Dispatch persists the new state
// synchronously; when a session token is available the state is also pushed
// to the server in the background. That push is at-most-once: it is tried
// once, never retried or queued, and its failure only shows up in the debug
// log. Pushes from rapid dispatches may land out of order.
type Store struct {
	mu    sync.Mutex
	state State

	storage     Storage
	syncer      Syncer
	token       func() string
	syncTimeout time.Duration
	log         *zap.Logger

	inflight sync.WaitGroup
}

type Option func(*Store)

// WithSyncer enables the server mirror. token is consulted on every dispatch;
// an empty token skips the push.
func WithSyncer(s Syncer, token func() string) Option {
	return func(st *Store) {
		st.syncer = s
		st.token = token
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(st *Store) { st.log = l }
}

func WithSyncTimeout(d time.Duration) Option {
	return func(st *Store) { st.syncTimeout = d }
}

func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:     storage,
		syncTimeout: 5 * time.Second,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore reloads the persisted cart, if any, through a LOAD action.
func (s *Store) Restore() error {
	data, err := s.storage.Load(StorageKey)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	var saved State
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("decode cart: %w", err)
	}
	_, err = s.Dispatch(Load(saved))
	return err
}

// Dispatch reduces a into the current state and persists the result. If
// persisting fails the state is left unchanged.
func (s *Store) Dispatch(a Action) (State, error) {
	s.mu.Lock()
	next := Reduce(s.state, a)
	data, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return s.State(), fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Save(StorageKey, data); err != nil {
		s.mu.Unlock()
		return s.State(), fmt.Errorf("save cart: %w", err)
	}
	s.state = next
	s.mu.Unlock()

	s.push(next)
	return next, nil
}

func (s *Store) push(st State) {
	if s.syncer == nil || s.token == nil {
		return
	}
	token := s.token()
	if token == "" {
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
		defer cancel()
		if err := s.syncer.Push(ctx, token, st); err != nil {
			s.log.Debug("cart sync dropped", zap.Error(err))
		}
	}()
}

// Wait blocks until background pushes started so far have finished.
func (s *Store) Wait() {
	s.inflight.Wait()
}

// State returns a copy of the current cart.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Product is the catalog view AddToCart needs.
type Product struct {
	ID       string
	Name     string
	Image    string
	Category string
	Sizes    map[string]decimal.Decimal
}

// AddToCart adds quantity units of product in size at that size's price.
func (s *Store) AddToCart(p Product, size string, quantity int) (State, error) {
	price, ok := p.Sizes[size]
	if !ok {
		return s.State(), fmt.Errorf("product %s has no size %q", p.ID, size)
	}
	return s.Dispatch(Add(LineItem{
		ProductID: p.ID,
		Size:      size,
		Name:      p.Name,
		Image:     p.Image,
		Category:  p.Category,
		Price:     price,
		Quantity:  quantity,
	}))
}
