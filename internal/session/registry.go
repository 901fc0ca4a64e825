package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/view"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultIdleTTL        = 30 * time.Minute
	DefaultPersistTimeout = 2 * time.Second

	cleanupInterval = time.Minute
)

// Session is everything one browser owns: its engine and the collaborators
// the engine renders and notifies through.
type Session struct {
	ID      string
	Engine  *cart.Engine
	Board   *view.CartBoard
	Flashes *view.Flashes

	persister *heldPersister
	loaded    atomic.Bool

	// guarded by Registry.mu
	inUse    int
	lastSeen time.Time
}

// Loaded reports whether the stored cart has been read. Until then the
// session works in memory only and writes nothing back.
func (s *Session) Loaded() bool {
	return s.loaded.Load()
}

type Config struct {
	IdleTTL        time.Duration
	PersistTimeout time.Duration
	FlashTTL       time.Duration
}

// Registry hands out one Session per id. The first access restores the
// persisted cart; concurrent first accesses share one restore.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	sfg      singleflight.Group

	repo    repository.CartRepository
	catalog cart.Catalog
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time

	stopCleanup chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

func NewRegistry(repo repository.CartRepository, catalog cart.Catalog, cfg Config, logger *zap.Logger) *Registry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = DefaultPersistTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		sessions:    make(map[string]*Session),
		repo:        repo,
		catalog:     catalog,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// Acquire returns the session, restoring it from the repository on first
// use, and marks it in use until release is called. A session whose load
// failed is retried on every Acquire until the load succeeds.
func (r *Registry) Acquire(ctx context.Context, id string) (*Session, func()) {
	restored := false
	for {
		if s := r.acquireExisting(id); s != nil {
			if !restored && !s.Loaded() {
				r.reload(ctx, s)
			}
			return s, r.releaser(s)
		}

		restored = true
		_, _, _ = r.sfg.Do(id, func() (interface{}, error) {
			r.mu.Lock()
			_, ok := r.sessions[id]
			r.mu.Unlock()
			if ok {
				return nil, nil
			}

			s := r.newSession(id)
			r.load(ctx, s, false)

			r.mu.Lock()
			s.lastSeen = r.now()
			r.sessions[id] = s
			r.mu.Unlock()
			return nil, nil
		})
	}
}

func (r *Registry) acquireExisting(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil
	}
	s.inUse++
	s.lastSeen = r.now()
	return s
}

func (r *Registry) releaser(s *Session) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			s.inUse--
			s.lastSeen = r.now()
		})
	}
}

func (r *Registry) newSession(id string) *Session {
	board := view.NewCartBoard()
	flashes := view.NewFlashes(r.cfg.FlashTTL)
	persister := &heldPersister{
		next: repository.NewWriteThrough(r.repo, id, r.cfg.PersistTimeout, r.logger),
	}
	engine := cart.NewEngine(r.catalog, cart.Observers{
		Renderer:  board,
		Persister: persister,
		Notifier:  flashes,
	})
	return &Session{
		ID:        id,
		Engine:    engine,
		Board:     board,
		Flashes:   flashes,
		persister: persister,
	}
}

func (r *Registry) reload(ctx context.Context, s *Session) {
	_, _, _ = r.sfg.Do("reload:"+s.ID, func() (interface{}, error) {
		if !s.Loaded() {
			r.load(ctx, s, true)
		}
		return nil, nil
	})
}

// load reads the stored cart into the session. A stored cart replaces
// whatever the session holds; with nothing stored the in-memory cart is
// kept. On failure the session stays unloaded and its saves are held.
func (r *Registry) load(ctx context.Context, s *Session, retry bool) {
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.PersistTimeout)
	defer cancel()

	persisted, err := r.repo.Load(loadCtx, s.ID)
	switch {
	case err == nil:
		s.Engine.Restore(persisted)
		s.Board.RenderCart(s.Engine.Cart())
		r.logger.Debug("session restored", zap.String("session_id", s.ID), zap.Int("lines", len(persisted.Lines)))
	case errors.Is(err, repository.ErrCartNotFound):
	default:
		r.logger.Warn("cart load failed, holding writes", zap.String("session_id", s.ID), zap.Error(err))
		return
	}

	s.persister.open()
	s.loaded.Store(true)

	// changes made while unloaded were not written
	if current := s.Engine.Cart(); retry && !current.IsEmpty() {
		s.persister.Save(current)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.stopCleanup:
			return
		}
	}
}

// evictIdle drops sessions nobody holds that were not used within IdleTTL.
// Their carts are already persisted, so the next access restores them.
func (r *Registry) evictIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.cfg.IdleTTL)
	for id, s := range r.sessions {
		if s.inUse == 0 && s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
		}
	}
}

// Close stops the background cleanup and waits for it to finish.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		close(r.stopCleanup)
		r.wg.Wait()
	})
	return nil
}

// heldPersister drops saves until opened, so a session that could not read
// its stored cart never overwrites it.
type heldPersister struct {
	mu     sync.Mutex
	opened bool
	next   cart.Persister
}

func (p *heldPersister) Save(c domain.Cart) {
	p.mu.Lock()
	opened := p.opened
	p.mu.Unlock()
	if opened {
		p.next.Save(c)
	}
}

func (p *heldPersister) open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opened = true
}
