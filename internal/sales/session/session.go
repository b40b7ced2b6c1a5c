// Package session brackets the pure draft engine with the I/O around it:
// the concurrent initial fetch, catalog resolution before line mutations,
// and the guarded submission lifecycle. A session is the exclusive owner of
// one draft; its id acts as a capability that invalidation revokes, so a
// lookup or submission that lands after the form was abandoned becomes a
// no-op instead of mutating an orphaned draft.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lumenpos/lumenpos/internal/catalog"
	"github.com/lumenpos/lumenpos/internal/sales"
	"github.com/lumenpos/lumenpos/internal/sales/draft"
)

var (
	// ErrSessionClosed is returned for any operation on an invalidated
	// session, including late completions of in-flight requests.
	ErrSessionClosed = errors.New("session: sale session closed")
	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session: sale session not found")
	// ErrSubmitInFlight guards against duplicate-fire: a second submit for
	// the same draft is refused until the first resolves.
	ErrSubmitInFlight = errors.New("session: submission already in flight")
	// ErrValidationFailed signals local rule violations; the messages are
	// on the draft, keyed per field.
	ErrValidationFailed = errors.New("session: draft failed validation")
)

// Deps are the collaborators a session reaches out to.
type Deps struct {
	Engine    *draft.Engine
	Catalog   catalog.Lookup
	Gateway   sales.SubmissionGateway
	Invoices  sales.InvoiceNumberSource
	Customers sales.CustomerSource
	Logger    *slog.Logger
	Now       func() time.Time
}

// Manager opens, resolves and invalidates sale-entry sessions.
type Manager struct {
	deps Deps

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager builds a Manager.
func NewManager(deps Deps) *Manager {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Manager{deps: deps, sessions: make(map[uuid.UUID]*Session)}
}

// Open creates a new sale-entry session. Customers, catalog items and the
// next invoice number are three independent requests with no ordering
// dependency, so they run concurrently.
func (m *Manager) Open(ctx context.Context) (*Session, error) {
	var (
		customers     []sales.Customer
		items         []catalog.Item
		invoiceNumber string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = m.deps.Customers.Customers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = m.deps.Catalog.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		invoiceNumber, err = m.deps.Invoices.NextInvoiceNumber(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Session{
		id:        uuid.New(),
		manager:   m,
		draft:     m.deps.Engine.Initialize(invoiceNumber, today(m.deps.Now())),
		customers: customers,
		items:     items,
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s, nil
}

// Get resolves a live session by id.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close invalidates a session. The draft loses its owner; any response
// still in flight for it is dropped on arrival.
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func today(now time.Time) time.Time {
	y, mo, d := now.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, now.Location())
}

// Session owns one in-progress draft.
type Session struct {
	id      uuid.UUID
	manager *Manager

	mu        sync.Mutex
	draft     draft.Draft
	customers []sales.Customer
	items     []catalog.Item
	closed    bool
	inFlight  bool
}

// ID returns the capability token the presentation layer addresses the
// session by.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Draft returns a copy of the current draft value.
func (s *Session) Draft() (draft.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return draft.Draft{}, ErrSessionClosed
	}
	return s.draft, nil
}

// Customers returns the customer list fetched at open time.
func (s *Session) Customers() []sales.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers
}

// Items returns the catalog list fetched at open time.
func (s *Session) Items() []catalog.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}

// Totals recomputes the derived figures for the current draft.
func (s *Session) Totals() (draft.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return draft.Totals{}, ErrSessionClosed
	}
	return s.manager.deps.Engine.Totals(s.draft), nil
}

// resolvePick captures a catalog snapshot for itemID. A failed lookup
// degrades to a zero-stock pick so the form never shows an optimistic
// figure that was not actually confirmed.
func (s *Session) resolvePick(ctx context.Context, itemID string) draft.Pick {
	item, err := s.manager.deps.Catalog.Resolve(ctx, itemID)
	if err != nil {
		s.manager.deps.Logger.Warn("catalog resolution failed, defaulting stock to zero",
			slog.String("item_id", itemID), slog.Any("error", err))
		return draft.Pick{}
	}
	return draft.Pick{
		UnitPrice:   item.SellingPrice,
		StockOnHand: item.AvailableStock(),
		UnitCode:    item.Unit.Code,
	}
}

// AddLine resolves the catalog snapshot for itemID and appends a line.
func (s *Session) AddLine(ctx context.Context, itemID string) error {
	pick := s.resolvePick(ctx, itemID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	next, err := s.manager.deps.Engine.AddLine(s.draft, itemID, pick)
	if err != nil {
		return err
	}
	s.draft = next
	return nil
}

// RepickLine re-resolves the snapshot for a changed item id on an existing
// line.
func (s *Session) RepickLine(ctx context.Context, index int, itemID string) error {
	pick := s.resolvePick(ctx, itemID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	next, err := s.manager.deps.Engine.RepickLine(s.draft, index, itemID, pick)
	if err != nil {
		return err
	}
	s.draft = next
	return nil
}

// Mutate applies a pure engine transformation to the draft. Used for the
// field setters that need no catalog resolution.
func (s *Session) Mutate(fn func(*draft.Engine, draft.Draft) (draft.Draft, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	next, err := fn(s.manager.deps.Engine, s.draft)
	if err != nil {
		return err
	}
	s.draft = next
	return nil
}

// Submit validates the draft and hands the payload to the gateway.
//
// Validation failure stores the error set on the draft and returns
// ErrValidationFailed. A server rejection maps its field errors into the
// draft and returns the *sales.Rejection. A transport failure leaves the
// draft byte-for-byte unchanged. Only confirmed success resets the draft,
// with a freshly fetched invoice number.
func (s *Session) Submit(ctx context.Context) (sales.InvoiceRecord, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return sales.InvoiceRecord{}, ErrSessionClosed
	}
	if s.inFlight {
		s.mu.Unlock()
		return sales.InvoiceRecord{}, ErrSubmitInFlight
	}

	engine := s.manager.deps.Engine
	payload, errs := engine.Validate(s.draft)
	if payload == nil {
		s.draft = draft.WithErrors(s.draft, errs)
		s.mu.Unlock()
		return sales.InvoiceRecord{}, ErrValidationFailed
	}
	s.inFlight = true
	s.mu.Unlock()

	record, submitErr := s.manager.deps.Gateway.Submit(ctx, *payload)

	var nextInvoice string
	var invoiceErr error
	if submitErr == nil {
		// The sale is already durable; a failed sequence fetch must not
		// undo the reset, the form just starts without a number.
		nextInvoice, invoiceErr = s.manager.deps.Invoices.NextInvoiceNumber(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if s.closed {
		return sales.InvoiceRecord{}, ErrSessionClosed
	}

	if submitErr != nil {
		var rejection *sales.Rejection
		if errors.As(submitErr, &rejection) {
			s.draft = engine.ApplyServerRejection(s.draft, rejection.FieldErrors)
		}
		return sales.InvoiceRecord{}, submitErr
	}

	if invoiceErr != nil {
		s.manager.deps.Logger.Warn("next invoice number fetch failed after commit",
			slog.Any("error", invoiceErr))
	}
	s.draft = engine.Initialize(nextInvoice, today(s.manager.deps.Now()))
	return record, nil
}
