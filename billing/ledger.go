/*
ledger.go - Application service over the persistence port

PURPOSE:
  The Ledger is the only writer of a user's Snapshot. Every change is
  load -> apply Mutation -> save, so the stored document always moves from
  one valid state to the next in a single replacement.

PERSISTENCE PORT:
  SnapshotStore is injected; the billing core stays storage agnostic.
  DocumentSnapshots adapts any generic.DocumentStore (SQLite, memory) by
  encoding the Snapshot as a JSON document.

CONCURRENCY:
  Mutations are serialised per Ledger with a mutex. Reads take a consistent
  snapshot and compute on it without holding the lock.

IDS:
  Clients and entries created without an id get a random UUID.
*/
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/generic"
)

// SnapshotStore loads and saves whole per-user snapshots.
type SnapshotStore interface {
	Load(ctx context.Context, userID generic.UserID) (Snapshot, error)
	Save(ctx context.Context, userID generic.UserID, s Snapshot) error
}

// =============================================================================
// JSON DOCUMENT ADAPTER
// =============================================================================

// DocumentSnapshots stores snapshots as JSON documents.
type DocumentSnapshots struct {
	Docs generic.DocumentStore
}

func NewDocumentSnapshots(docs generic.DocumentStore) *DocumentSnapshots {
	return &DocumentSnapshots{Docs: docs}
}

// Load returns an empty snapshot for users with no document.
func (d *DocumentSnapshots) Load(ctx context.Context, userID generic.UserID) (Snapshot, error) {
	doc, err := d.Docs.Load(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	if len(doc) == 0 {
		return EmptySnapshot(), nil
	}
	return DecodeSnapshot(doc)
}

func (d *DocumentSnapshots) Save(ctx context.Context, userID generic.UserID, s Snapshot) error {
	doc, err := json.Marshal(s.normalized())
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return d.Docs.Save(ctx, userID, doc)
}

// DecodeSnapshot parses a stored document. Missing sections default to empty.
func DecodeSnapshot(doc []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(doc, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s.normalized(), nil
}

func (s Snapshot) normalized() Snapshot {
	if s.Clients == nil {
		s.Clients = []Client{}
	}
	if s.WorkEntries == nil {
		s.WorkEntries = []WorkEntry{}
	}
	return s
}

// =============================================================================
// LEDGER SERVICE
// =============================================================================

// errNoChange lets a mutation finish successfully without a save.
var errNoChange = errors.New("no change")

// Ledger applies mutations to stored snapshots.
type Ledger struct {
	store SnapshotStore
	mu    sync.Mutex
	newID func() string
}

func NewLedger(store SnapshotStore) *Ledger {
	return &Ledger{store: store, newID: uuid.NewString}
}

// Snapshot returns the user's current document.
func (l *Ledger) Snapshot(ctx context.Context, userID generic.UserID) (Snapshot, error) {
	return l.store.Load(ctx, userID)
}

// Apply runs the mutation against the stored snapshot and saves the result.
// Nothing is saved when the mutation fails.
func (l *Ledger) Apply(ctx context.Context, userID generic.UserID, m Mutation) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.store.Load(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	next, err := m(current)
	if errors.Is(err, errNoChange) {
		return current, nil
	}
	if err != nil {
		return current, err
	}
	if err := l.store.Save(ctx, userID, next); err != nil {
		return current, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return next, nil
}

func (l *Ledger) AddClient(ctx context.Context, userID generic.UserID, c Client) (Client, error) {
	if c.ID == "" {
		c.ID = l.newID()
	}
	_, err := l.Apply(ctx, userID, AddClient(c))
	return c, err
}

func (l *Ledger) UpdateClient(ctx context.Context, userID generic.UserID, c Client) error {
	_, err := l.Apply(ctx, userID, UpdateClient(c))
	return err
}

// DeleteClient removes the client together with its work entries.
func (l *Ledger) DeleteClient(ctx context.Context, userID generic.UserID, clientID string) error {
	_, err := l.Apply(ctx, userID, DeleteClient(clientID))
	return err
}

func (l *Ledger) AddWorkEntry(ctx context.Context, userID generic.UserID, e WorkEntry) (WorkEntry, error) {
	if e.ID == "" {
		e.ID = l.newID()
	}
	_, err := l.Apply(ctx, userID, AddWorkEntry(e))
	return e, err
}

func (l *Ledger) UpdateWorkEntry(ctx context.Context, userID generic.UserID, e WorkEntry) error {
	_, err := l.Apply(ctx, userID, UpdateWorkEntry(e))
	return err
}

func (l *Ledger) DeleteWorkEntry(ctx context.Context, userID generic.UserID, entryID string) error {
	_, err := l.Apply(ctx, userID, DeleteWorkEntry(entryID))
	return err
}

func (l *Ledger) SetUserProfile(ctx context.Context, userID generic.UserID, p UserProfile) error {
	_, err := l.Apply(ctx, userID, SetUserProfile(p))
	return err
}

func (l *Ledger) ReplaceSnapshot(ctx context.Context, userID generic.UserID, s Snapshot) error {
	_, err := l.Apply(ctx, userID, ReplaceSnapshot(s))
	return err
}

// MoveWorkEntry re-dates an entry through the schedule index. Moving onto the
// same date saves nothing and reports moved=false, as does any failure. The
// entry's client is not re-checked: only the date changes.
func (l *Ledger) MoveWorkEntry(ctx context.Context, userID generic.UserID, entryID string, newDate generic.Date) (WorkEntry, bool, error) {
	var (
		moved   WorkEntry
		changed bool
	)
	_, err := l.Apply(ctx, userID, func(s Snapshot) (Snapshot, error) {
		entry, ok, err := NewScheduleIndex(s.WorkEntries).MoveEntry(entryID, newDate)
		if err != nil {
			return s, err
		}
		if !ok {
			moved = entry
			return s, errNoChange
		}
		next, err := replaceWorkEntry(entry)(s)
		if err != nil {
			return s, err
		}
		moved, changed = entry, true
		return next, nil
	})
	if err != nil {
		return moved, false, err
	}
	return moved, changed, nil
}

// =============================================================================
// READ MODELS
// =============================================================================

// Invoice builds the invoice for a client and billing month.
func (l *Ledger) Invoice(ctx context.Context, userID generic.UserID, clientID string, year int, month time.Month, issueDate generic.Date) (*Invoice, error) {
	s, err := l.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return InvoiceFor(s, clientID, year, month, issueDate)
}

func (l *Ledger) Alerts(ctx context.Context, userID generic.UserID, today generic.Date) ([]Alert, error) {
	s, err := l.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ComputeAlerts(s.Clients, today), nil
}

func (l *Ledger) Schedule(ctx context.Context, userID generic.UserID) (*ScheduleIndex, error) {
	s, err := l.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewScheduleIndex(s.WorkEntries), nil
}

func (l *Ledger) Dashboard(ctx context.Context, userID generic.UserID, today generic.Date) (Dashboard, error) {
	s, err := l.store.Load(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	return Summarize(s, today), nil
}

// DraftEntry pre-fills a new entry for a client. A positive daily rate
// becomes one "day" at that rate.
func DraftEntry(c Client, date generic.Date) WorkEntry {
	e := WorkEntry{
		Date:      date,
		ClientID:  c.ID,
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.Zero,
		Unit:      UnitLumpSum,
	}
	if c.DailyRate.IsPositive() {
		e.UnitPrice = c.DailyRate
		e.Unit = UnitDay
	}
	return e
}

// Common unit labels. Units are display text only.
const (
	UnitLumpSum = "lump sum"
	UnitDay     = "day"
	UnitHour    = "hour"
)
