package ledger

import (
	"math"
	"sort"
	"strconv"

	"github.com/mmynk/famfund/internal/calculator"
	"github.com/mmynk/famfund/internal/models"
)

// Ledger accumulates expense events into per-participant net balances.
// It owns the events it was built from; participants live in the Registry.
type Ledger struct {
	registry *Registry
	newID    IDFunc

	entries  []*entry
	byID     map[string]*entry
	balances map[string]int64

	// outstanding is the sum of all unsettled totals. It bounds every
	// balance and every paid/owed total, so keeping it within int64 keeps
	// them all within int64.
	outstanding int64
}

type entry struct {
	event models.ExpenseEvent
	seq   int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithEventIDs replaces the UUID generator used for events applied without an ID.
func WithEventIDs(fn IDFunc) Option {
	return func(l *Ledger) {
		l.newID = fn
	}
}

// New creates an empty ledger over the given registry.
func New(registry *Registry, opts ...Option) *Ledger {
	l := &Ledger{
		registry: registry,
		newID:    newUUID,
		byID:     make(map[string]*entry),
		balances: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the participant registry the ledger validates against.
func (l *Ledger) Registry() *Registry {
	return l.registry
}

// ApplyEvent validates the event and folds it into the balances: the payer is
// credited the total and every participant is debited their share. An event
// that is already settled is recorded in history without touching balances.
//
// The call is all-or-nothing. On error the ledger is unchanged. The stored copy
// of the event (with its ID filled in) is returned.
func (l *Ledger) ApplyEvent(event models.ExpenseEvent) (models.ExpenseEvent, error) {
	if err := event.Validate(); err != nil {
		return models.ExpenseEvent{}, err
	}
	if !l.registry.Has(event.Payer) {
		return models.ExpenseEvent{}, models.NewFieldError(models.ErrUnknownParticipant, "payer", event.Payer, "not registered")
	}
	for _, p := range event.Participants {
		if !l.registry.Has(p) {
			return models.ExpenseEvent{}, models.NewFieldError(models.ErrUnknownParticipant, "participants", p, "not registered")
		}
	}
	if !event.Settled && event.TotalAmount > math.MaxInt64-l.outstanding {
		return models.ExpenseEvent{}, models.NewFieldError(models.ErrInvalidEvent, "total_amount",
			strconv.FormatInt(event.TotalAmount, 10), "outstanding total of the ledger would overflow")
	}
	if event.ID == "" {
		event.ID = l.newID()
	}
	if _, exists := l.byID[event.ID]; exists {
		return models.ExpenseEvent{}, models.NewFieldError(models.ErrInvalidEvent, "id", event.ID, "event already applied")
	}

	effect, err := calculator.EventEffect(event)
	if err != nil {
		return models.ExpenseEvent{}, err
	}

	event.Participants = append([]string(nil), event.Participants...)
	e := &entry{event: event, seq: len(l.entries)}
	l.entries = append(l.entries, e)
	l.byID[event.ID] = e

	for id := range effect {
		if _, ok := l.balances[id]; !ok {
			l.balances[id] = 0
		}
	}
	if !event.Settled {
		l.outstanding += event.TotalAmount
		for id, delta := range effect {
			l.balances[id] += delta
		}
	}
	return copyEvent(event), nil
}

// Balances returns the net balance of every participant referenced by any
// event. Positive means the participant is owed money. The values always sum
// to zero.
func (l *Ledger) Balances() map[string]int64 {
	out := make(map[string]int64, len(l.balances))
	for id, v := range l.balances {
		out[id] = v
	}
	return out
}

// Balance returns one participant's net balance (0 if never referenced).
func (l *Ledger) Balance(participantID string) int64 {
	return l.balances[participantID]
}

// Summaries breaks balances down into paid and owed totals, sorted by participant ID.
func (l *Ledger) Summaries() ([]calculator.MemberBalance, error) {
	events := make([]models.ExpenseEvent, len(l.entries))
	for i, e := range l.entries {
		events[i] = e.event
	}
	return calculator.CalculateBalances(events)
}

// History returns all events, settled or not, ordered by date. Events with
// the same date keep the order they were applied in.
func (l *Ledger) History() []models.ExpenseEvent {
	sorted := make([]*entry, len(l.entries))
	copy(sorted, l.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].event.Date.Before(sorted[j].event.Date)
	})
	out := make([]models.ExpenseEvent, len(sorted))
	for i, e := range sorted {
		out[i] = copyEvent(e.event)
	}
	return out
}

// Len is the number of events in the ledger.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Event returns the event with the given ID.
func (l *Ledger) Event(id string) (models.ExpenseEvent, error) {
	e, ok := l.byID[id]
	if !ok {
		return models.ExpenseEvent{}, models.NewFieldError(models.ErrNotFound, "event_id", id, "no such event")
	}
	return copyEvent(e.event), nil
}

// Shares returns the split of one event.
func (l *Ledger) Shares(eventID string) ([]models.SplitShare, error) {
	e, ok := l.byID[eventID]
	if !ok {
		return nil, models.NewFieldError(models.ErrNotFound, "event_id", eventID, "no such event")
	}
	return calculator.ComputeShares(e.event)
}

// MarkSettled flags an event as repaid and removes its contribution from the
// outstanding balances. Settling an already settled event does nothing.
func (l *Ledger) MarkSettled(eventID string) error {
	e, ok := l.byID[eventID]
	if !ok {
		return models.NewFieldError(models.ErrNotFound, "event_id", eventID, "no such event")
	}
	if e.event.Settled {
		return nil
	}
	effect, err := calculator.EventEffect(e.event)
	if err != nil {
		return err
	}
	for id, delta := range effect {
		l.balances[id] -= delta
	}
	l.outstanding -= e.event.TotalAmount
	e.event.Settled = true
	return nil
}

// MarkSettled closes out one event of the ledger once it has been repaid.
// Transfers proposed earlier are not changed; propose again to see the new state.
func MarkSettled(l *Ledger, eventID string) error {
	return l.MarkSettled(eventID)
}

// ProposeTransfers proposes the repayments that would zero the current balances.
func (l *Ledger) ProposeTransfers() []models.Transfer {
	return calculator.ProposeTransfers(l.balances)
}

// OutstandingTotal is the sum of the totals of all unsettled events.
func (l *Ledger) OutstandingTotal() int64 {
	return l.outstanding
}

// Outstanding lists participants with a non-zero balance in ID order.
func (l *Ledger) Outstanding() []string {
	var ids []string
	for _, id := range sortedIDs(l.balances) {
		if l.balances[id] != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func copyEvent(e models.ExpenseEvent) models.ExpenseEvent {
	e.Participants = append([]string(nil), e.Participants...)
	return e
}
