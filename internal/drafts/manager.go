package drafts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/booking"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
)

var ErrSessionNotFound = httperr.ErrBusiness("session_not_found")

const (
	defaultDraftTTL        = 2 * time.Hour
	defaultIdleTimeout     = 15 * time.Minute
	defaultJanitorInterval = time.Minute
)

type Options struct {
	// DraftTTL is how long a stored draft outlives its last event.
	DraftTTL time.Duration
	// IdleTimeout evicts a live wizard from memory; its draft stays in
	// the store and is restored on the next request.
	IdleTimeout     time.Duration
	JanitorInterval time.Duration
}

// Result is what every booking request answers with.
type Result struct {
	SessionID string           `json:"session_id"`
	View      booking.View     `json:"view"`
	Notices   []booking.Notice `json:"notices"`
	Redirect  string           `json:"redirect,omitempty"`
}

// Outbox collects what a wizard wants to tell the user until the current
// response is written.
type Outbox struct {
	mu       sync.Mutex
	notices  []booking.Notice
	redirect string
}

func (o *Outbox) Notify(n booking.Notice) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notices = append(o.notices, n)
}

func (o *Outbox) Navigate(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.redirect = path
}

func (o *Outbox) drain() ([]booking.Notice, string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	notices := o.notices
	if notices == nil {
		notices = []booking.Notice{}
	}
	redirect := o.redirect
	o.notices, o.redirect = nil, ""
	return notices, redirect
}

type entry struct {
	wizard   *booking.Wizard
	outbox   *Outbox
	lastSeen time.Time
}

// Manager owns the live booking sessions.
type Manager struct {
	deps   booking.Deps
	store  Store
	opts   Options
	clock  clock.Clock
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewManager(deps booking.Deps, store Store, opts Options, logger *zap.Logger) *Manager {
	if opts.DraftTTL <= 0 {
		opts.DraftTTL = defaultDraftTTL
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	if opts.JanitorInterval <= 0 {
		opts.JanitorInterval = defaultJanitorInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := deps.Clock
	if c == nil {
		c = clock.New(nil)
	}

	return &Manager{
		deps:     deps,
		store:    store,
		opts:     opts,
		clock:    c,
		logger:   logger.Named("drafts"),
		sessions: map[string]*entry{},
	}
}

// ======================================================
// SESSIONS
// ======================================================

// Create opens a booking session. A session whose start fails is not kept.
func (m *Manager) Create(ctx context.Context, session *booking.Session, link booking.LinkParams) (*Result, error) {
	id := uuid.NewString()
	outbox := &Outbox{}
	w := booking.NewWizard(id, m.depsFor(outbox), session, link)

	if err := w.Start(ctx); err != nil {
		w.Close()
		return nil, err
	}

	e := &entry{wizard: w, outbox: outbox, lastSeen: m.clock.Now()}
	m.mu.Lock()
	m.sessions[id] = e
	m.mu.Unlock()

	return m.finish(ctx, id, e), nil
}

// Do runs fn against the session's wizard and persists the outcome. The
// result is returned even when fn fails so callers can render the
// current step.
func (m *Manager) Do(ctx context.Context, id string, fn func(w *booking.Wizard) error) (*Result, error) {
	e, err := m.get(ctx, id)
	if err != nil {
		return nil, err
	}

	ferr := fn(e.wizard)
	return m.finish(ctx, id, e), ferr
}

func (m *Manager) View(ctx context.Context, id string) (*Result, error) {
	return m.Do(ctx, id, func(*booking.Wizard) error { return nil })
}

// Delete discards a session and its draft.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		e.wizard.Close()
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// Len reports the live sessions held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) depsFor(outbox *Outbox) booking.Deps {
	deps := m.deps
	deps.Navigator = outbox
	deps.Notifier = outbox
	return deps
}

func (m *Manager) get(ctx context.Context, id string) (*entry, error) {
	m.mu.Lock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.clock.Now()
		m.mu.Unlock()
		return e, nil
	}
	m.mu.Unlock()

	snap, err := m.store.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	outbox := &Outbox{}
	w, err := booking.Restore(ctx, m.depsFor(outbox), snap)
	if err != nil {
		return nil, fmt.Errorf("restore draft: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[id]; ok {
		w.Close()
		existing.lastSeen = m.clock.Now()
		return existing, nil
	}

	e := &entry{wizard: w, outbox: outbox, lastSeen: m.clock.Now()}
	m.sessions[id] = e
	m.logger.Debug("booking session restored", zap.String("session_id", id))
	return e, nil
}

// finish drains the outbox and stores the draft, or drops the session
// once the flow has ended.
func (m *Manager) finish(ctx context.Context, id string, e *entry) *Result {
	view := e.wizard.View()
	notices, redirect := e.outbox.drain()
	res := &Result{
		SessionID: id,
		View:      view,
		Notices:   notices,
		Redirect:  redirect,
	}

	if e.wizard.Done() {
		if err := m.Delete(ctx, id); err != nil {
			m.logger.Warn("draft cleanup failed", zap.String("session_id", id), zap.Error(err))
		}
		return res
	}

	if err := m.store.Save(ctx, e.wizard.Snapshot(), m.opts.DraftTTL); err != nil {
		m.logger.Warn("draft save failed", zap.String("session_id", id), zap.Error(err))
	}
	return res
}

// ======================================================
// JANITOR
// ======================================================

// Run evicts idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	t := m.clock.NewTicker(m.opts.JanitorInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			m.evictIdle()
		}
	}
}

func (m *Manager) evictIdle() int {
	cutoff := m.clock.Now().Add(-m.opts.IdleTimeout)

	m.mu.Lock()
	var idle []*entry
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, e)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, e := range idle {
		e.wizard.Close()
	}
	if len(idle) > 0 {
		m.logger.Debug("evicted idle booking sessions", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Close tears down every live wizard. Drafts stay in the store.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*entry{}
	m.mu.Unlock()

	for _, e := range sessions {
		e.wizard.Close()
	}
}
