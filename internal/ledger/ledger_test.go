package ledger

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/famfund/internal/calculator"
	"github.com/mmynk/famfund/internal/models"
)

func newTestLedger(t *testing.T, names ...string) (*Ledger, map[string]string) {
	t.Helper()
	reg := NewRegistry(WithRegistryIDs(sequentialIDs("p")))
	ids := make(map[string]string, len(names))
	for _, n := range names {
		id, err := reg.Resolve(n)
		require.NoError(t, err)
		ids[n] = id
	}
	return New(reg, WithEventIDs(sequentialIDs("e"))), ids
}

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestApplyEvent_PayerAmongParticipants(t *testing.T) {
	l, ids := newTestLedger(t, "Phuong", "Cong", "Phu")

	event, err := l.ApplyEvent(models.ExpenseEvent{
		Date:         day,
		TotalAmount:  100,
		Payer:        ids["Phuong"],
		Participants: []string{ids["Phuong"], ids["Cong"], ids["Phu"]},
		Note:         "dinner",
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", event.ID)

	shares, err := l.Shares(event.ID)
	require.NoError(t, err)
	var owed []int64
	var sum int64
	for _, s := range shares {
		owed = append(owed, s.Owed)
		sum += s.Owed
	}
	assert.ElementsMatch(t, []int64{34, 33, 33}, owed)
	assert.Equal(t, int64(100), sum)

	payerShare := calculator.ShareOf(shares, ids["Phuong"])
	balances := l.Balances()
	assert.Equal(t, 100-payerShare, balances[ids["Phuong"]])
	assert.Equal(t, -calculator.ShareOf(shares, ids["Cong"]), balances[ids["Cong"]])
	assert.Zero(t, calculator.Sum(balances))
}

func TestApplyEvent_Rejections(t *testing.T) {
	l, ids := newTestLedger(t, "A", "B")

	tests := []struct {
		name    string
		event   models.ExpenseEvent
		wantErr error
		field   string
	}{
		{
			name:    "zero amount",
			event:   models.ExpenseEvent{TotalAmount: 0, Payer: ids["A"], Participants: []string{ids["B"]}},
			wantErr: models.ErrInvalidEvent,
			field:   "total_amount",
		},
		{
			name:    "negative amount",
			event:   models.ExpenseEvent{TotalAmount: -5, Payer: ids["A"], Participants: []string{ids["B"]}},
			wantErr: models.ErrInvalidEvent,
			field:   "total_amount",
		},
		{
			name:    "no participants",
			event:   models.ExpenseEvent{TotalAmount: 10, Payer: ids["A"]},
			wantErr: models.ErrInvalidEvent,
			field:   "participants",
		},
		{
			name:    "duplicate participant",
			event:   models.ExpenseEvent{TotalAmount: 10, Payer: ids["A"], Participants: []string{ids["B"], ids["B"]}},
			wantErr: models.ErrInvalidEvent,
			field:   "participants",
		},
		{
			name:    "unknown payer",
			event:   models.ExpenseEvent{TotalAmount: 10, Payer: "ghost", Participants: []string{ids["B"]}},
			wantErr: models.ErrUnknownParticipant,
			field:   "payer",
		},
		{
			name:    "unknown participant",
			event:   models.ExpenseEvent{TotalAmount: 10, Payer: ids["A"], Participants: []string{ids["B"], "ghost"}},
			wantErr: models.ErrUnknownParticipant,
			field:   "participants",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.ApplyEvent(tt.event)
			require.ErrorIs(t, err, tt.wantErr)
			var fe *models.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)

			// nothing changed
			assert.Zero(t, l.Len())
			assert.Empty(t, l.Balances())
		})
	}
}

func TestApplyEvent_DuplicateID(t *testing.T) {
	l, ids := newTestLedger(t, "A", "B")
	event := models.ExpenseEvent{ID: "fixed", TotalAmount: 10, Payer: ids["A"], Participants: []string{ids["B"]}}

	_, err := l.ApplyEvent(event)
	require.NoError(t, err)
	before := l.Balances()

	_, err = l.ApplyEvent(event)
	require.ErrorIs(t, err, models.ErrInvalidEvent)
	assert.Equal(t, before, l.Balances())
	assert.Equal(t, 1, l.Len())
}

func TestApplyEvent_OverflowRejected(t *testing.T) {
	l, ids := newTestLedger(t, "A", "B")
	big := models.ExpenseEvent{TotalAmount: math.MaxInt64/2 + 10, Payer: ids["A"], Participants: []string{ids["B"]}}

	_, err := l.ApplyEvent(big)
	require.NoError(t, err)
	before := l.Balances()

	_, err = l.ApplyEvent(big)
	require.ErrorIs(t, err, models.ErrInvalidEvent)
	var fe *models.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "total_amount", fe.Field)

	assert.Equal(t, before, l.Balances(), "a rejected event leaves balances untouched")
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, int64(math.MaxInt64/2+10), l.OutstandingTotal())
	assert.Equal(t, []models.Transfer{{From: ids["B"], To: ids["A"], Amount: math.MaxInt64/2 + 10}}, l.ProposeTransfers())

	// Settling frees the room again.
	require.NoError(t, l.MarkSettled(l.History()[0].ID))
	assert.Zero(t, l.OutstandingTotal())
	_, err = l.ApplyEvent(big)
	require.NoError(t, err)
}

func TestApplyEvent_FillsToMaxInt64(t *testing.T) {
	l, ids := newTestLedger(t, "A", "B", "C")

	_, err := l.ApplyEvent(models.ExpenseEvent{TotalAmount: math.MaxInt64 - 1, Payer: ids["A"], Participants: []string{ids["B"], ids["C"]}})
	require.NoError(t, err)
	_, err = l.ApplyEvent(models.ExpenseEvent{TotalAmount: 1, Payer: ids["C"], Participants: []string{ids["B"]}})
	require.NoError(t, err)

	_, err = l.ApplyEvent(models.ExpenseEvent{TotalAmount: 1, Payer: ids["B"], Participants: []string{ids["A"]}})
	require.ErrorIs(t, err, models.ErrInvalidEvent)

	balances := l.Balances()
	assert.Positive(t, balances[ids["A"]])
	assert.Negative(t, balances[ids["B"]])
	assert.Zero(t, calculator.Sum(balances))

	summaries, err := l.Summaries()
	require.NoError(t, err)
	for _, b := range summaries {
		assert.GreaterOrEqual(t, b.TotalPaid, int64(0))
		assert.GreaterOrEqual(t, b.TotalOwed, int64(0))
	}
	assert.Zero(t, calculator.ApplyTransfers(balances, l.ProposeTransfers())[ids["A"]])
}

func TestMarkSettled(t *testing.T) {
	l, ids := newTestLedger(t, "A", "B", "C")

	first, err := l.ApplyEvent(models.ExpenseEvent{Date: day, TotalAmount: 90, Payer: ids["A"], Participants: []string{ids["A"], ids["B"], ids["C"]}})
	require.NoError(t, err)
	_, err = l.ApplyEvent(models.ExpenseEvent{Date: day, TotalAmount: 40, Payer: ids["B"], Participants: []string{ids["C"]}})
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{ids["A"]: 60, ids["B"]: 10, ids["C"]: -70}, l.Balances())

	require.NoError(t, MarkSettled(l, first.ID))
	assert.Equal(t, map[string]int64{ids["A"]: 0, ids["B"]: 40, ids["C"]: -40}, l.Balances())

	// idempotent
	require.NoError(t, l.MarkSettled(first.ID))
	assert.Equal(t, int64(40), l.Balance(ids["B"]))

	got, err := l.Event(first.ID)
	require.NoError(t, err)
	assert.True(t, got.Settled)
	assert.Len(t, l.History(), 2, "settled events stay in history")

	assert.Equal(t, []models.Transfer{{From: ids["C"], To: ids["B"], Amount: 40}}, l.ProposeTransfers())
	assert.Equal(t, []string{ids["B"], ids["C"]}, l.Outstanding())
}

func TestMarkSettled_UnknownEvent(t *testing.T) {
	l, _ := newTestLedger(t, "A")
	err := MarkSettled(l, "nope")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestApplyEvent_AlreadySettled(t *testing.T) {
	l, ids := newTestLedger(t, "A", "B")
	_, err := l.ApplyEvent(models.ExpenseEvent{TotalAmount: 50, Payer: ids["A"], Participants: []string{ids["B"]}, Settled: true})
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{ids["A"]: 0, ids["B"]: 0}, l.Balances())
	assert.Empty(t, l.ProposeTransfers())
}

func TestHistoryOrder(t *testing.T) {
	l, ids := newTestLedger(t, "A", "B")
	apply := func(d time.Time, note string) {
		_, err := l.ApplyEvent(models.ExpenseEvent{Date: d, TotalAmount: 10, Payer: ids["A"], Participants: []string{ids["B"]}, Note: note})
		require.NoError(t, err)
	}
	apply(day.Add(48*time.Hour), "third")
	apply(day, "first")
	apply(day.Add(24*time.Hour), "second-a")
	apply(day.Add(24*time.Hour), "second-b")

	var notes []string
	for _, e := range l.History() {
		notes = append(notes, e.Note)
	}
	assert.Equal(t, []string{"first", "second-a", "second-b", "third"}, notes)
}

func TestHistoryIsACopy(t *testing.T) {
	l, ids := newTestLedger(t, "A", "B")
	_, err := l.ApplyEvent(models.ExpenseEvent{TotalAmount: 10, Payer: ids["A"], Participants: []string{ids["B"]}})
	require.NoError(t, err)

	h := l.History()
	h[0].Participants[0] = "tampered"
	h[0].Settled = true

	again := l.History()
	assert.Equal(t, ids["B"], again[0].Participants[0])
	assert.False(t, again[0].Settled)
}

func TestConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"Phuong", "Cong", "Phu", "Lan", "Mai"}
	l, ids := newTestLedger(t, names...)

	var applied []string
	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(len(names))
		var participants []string
		for _, idx := range rng.Perm(len(names))[:n] {
			participants = append(participants, ids[names[idx]])
		}
		e, err := l.ApplyEvent(models.ExpenseEvent{
			Date:         day.Add(time.Duration(rng.Intn(100)) * time.Hour),
			TotalAmount:  1 + rng.Int63n(100000),
			Payer:        ids[names[rng.Intn(len(names))]],
			Participants: participants,
		})
		require.NoError(t, err)
		applied = append(applied, e.ID)
		require.Zero(t, calculator.Sum(l.Balances()), "after event %d", i)

		if rng.Intn(4) == 0 {
			require.NoError(t, l.MarkSettled(applied[rng.Intn(len(applied))]))
			require.Zero(t, calculator.Sum(l.Balances()), "after settle %d", i)
		}
	}

	// Incremental balances agree with a full recomputation.
	summaries, err := l.Summaries()
	require.NoError(t, err)
	for _, s := range summaries {
		assert.Equal(t, s.NetBalance, l.Balance(s.ParticipantID))
	}

	for id, v := range calculator.ApplyTransfers(l.Balances(), l.ProposeTransfers()) {
		assert.Zerof(t, v, "participant %s", id)
	}
}
