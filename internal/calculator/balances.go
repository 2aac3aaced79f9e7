package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/famfund/internal/models"
)

// MemberBalance is the balance breakdown for one participant.
type MemberBalance struct {
	ParticipantID string
	NetBalance    int64 // Positive = owed money, Negative = owes money
	TotalPaid     int64 // Paid on behalf of the group across unsettled events
	TotalOwed     int64 // Own shares across unsettled events
}

// EventEffect returns the signed balance change an event causes per participant:
// the payer is credited the full total and each participant is debited their share.
// A payer who also participates nets total - share.
func EventEffect(event models.ExpenseEvent) (map[string]int64, error) {
	shares, err := ComputeShares(event)
	if err != nil {
		return nil, err
	}
	effect := make(map[string]int64, len(shares)+1)
	effect[event.Payer] += event.TotalAmount
	for _, s := range shares {
		effect[s.Participant] -= s.Owed
	}
	return effect, nil
}

// CalculateBalances aggregates who paid what and who owes what across events.
// Settled events only register their participants (with no effect), so every
// participant referenced by any event appears in the result.
//
// Algorithm:
//   - For each unsettled event: payer +total, each participant -share
//   - net_balance = total_paid - total_owed
//
// The result is sorted by participant ID.
func CalculateBalances(events []models.ExpenseEvent) ([]MemberBalance, error) {
	balances := make(map[string]*MemberBalance)
	touch := func(id string) *MemberBalance {
		b, ok := balances[id]
		if !ok {
			b = &MemberBalance{ParticipantID: id}
			balances[id] = b
		}
		return b
	}

	for _, event := range events {
		touch(event.Payer)
		for _, p := range event.Participants {
			touch(p)
		}
		if event.Settled {
			continue
		}

		shares, err := ComputeShares(event)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate shares for event %s: %w", event.ID, err)
		}

		balances[event.Payer].TotalPaid += event.TotalAmount
		for _, s := range shares {
			balances[s.Participant].TotalOwed += s.Owed
		}
	}

	result := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetBalance = b.TotalPaid - b.TotalOwed
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ParticipantID < result[j].ParticipantID
	})
	return result, nil
}

// Sum adds up all balances. For a consistent ledger it is always zero.
func Sum(balances map[string]int64) int64 {
	var total int64
	for _, v := range balances {
		total += v
	}
	return total
}
