package calculator

import (
	"sort"

	"github.com/mmynk/famfund/internal/models"
)

// ComputeShares splits an event's total evenly across its participants.
//
// Algorithm:
//   - base = floor(total / n), remainder r = total - base*n
//   - participants are ordered by ascending ID
//   - the first r participants owe base+1, the rest owe base
//
// The shares always sum to the event total exactly, and identical input
// yields identical output. Shares are returned in participant ID order.
func ComputeShares(event models.ExpenseEvent) ([]models.SplitShare, error) {
	n := int64(len(event.Participants))
	if n == 0 {
		return nil, models.NewFieldError(models.ErrInvalidEvent, "participants", "", "must not be empty")
	}
	if event.TotalAmount <= 0 {
		return nil, models.NewFieldError(models.ErrInvalidEvent, "total_amount", "", "must be positive")
	}

	ids := make([]string, len(event.Participants))
	copy(ids, event.Participants)
	sort.Strings(ids)

	base := event.TotalAmount / n
	remainder := event.TotalAmount - base*n

	shares := make([]models.SplitShare, len(ids))
	for i, id := range ids {
		owed := base
		if int64(i) < remainder {
			owed++
		}
		shares[i] = models.SplitShare{
			Event:       event.ID,
			Participant: id,
			Owed:        owed,
		}
	}
	return shares, nil
}

// ShareOf returns the amount a participant owes for an event, or 0 if they
// are not part of it.
func ShareOf(shares []models.SplitShare, participantID string) int64 {
	for _, s := range shares {
		if s.Participant == participantID {
			return s.Owed
		}
	}
	return 0
}
