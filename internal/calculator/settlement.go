package calculator

import (
	"container/heap"
	"sort"

	"github.com/mmynk/famfund/internal/models"
)

// party is a participant with an outstanding amount (always positive).
// The magnitude of math.MinInt64 does not fit an int64, hence uint64.
type party struct {
	id     string
	amount uint64
}

// partyHeap orders parties by largest amount first, then by ascending ID.
type partyHeap []party

func (h partyHeap) Len() int { return len(h) }
func (h partyHeap) Less(i, j int) bool {
	if h[i].amount != h[j].amount {
		return h[i].amount > h[j].amount
	}
	return h[i].id < h[j].id
}
func (h partyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *partyHeap) Push(x any)   { *h = append(*h, x.(party)) }
func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// ProposeTransfers proposes payments that bring every balance to zero.
//
// Greedy matching: the largest debtor pays the largest creditor
// min(|debt|, credit), and the step repeats until one side runs out. Equal
// magnitudes are broken by ascending participant ID. Every step zeroes at least
// one party, so at most k-1 transfers are produced for k non-zero balances.
// The result is not guaranteed to be the minimum possible number of transfers.
//
// Transfers are returned sorted by (From, To). If the balances do not sum to
// zero the surplus side keeps its residue; no transfer is invented for it.
func ProposeTransfers(balances map[string]int64) []models.Transfer {
	creditors := &partyHeap{}
	debtors := &partyHeap{}
	for id, bal := range balances {
		switch {
		case bal > 0:
			*creditors = append(*creditors, party{id: id, amount: uint64(bal)})
		case bal < 0:
			*debtors = append(*debtors, party{id: id, amount: uint64(-(bal + 1)) + 1})
		}
	}
	heap.Init(creditors)
	heap.Init(debtors)

	var transfers []models.Transfer
	for creditors.Len() > 0 && debtors.Len() > 0 {
		debtor := heap.Pop(debtors).(party)
		creditor := heap.Pop(creditors).(party)

		amount := min(debtor.amount, creditor.amount)
		transfers = append(transfers, models.Transfer{
			From:   debtor.id,
			To:     creditor.id,
			Amount: int64(amount), // amount <= a creditor balance <= MaxInt64
		})

		debtor.amount -= amount
		creditor.amount -= amount
		if debtor.amount > 0 {
			heap.Push(debtors, debtor)
		}
		if creditor.amount > 0 {
			heap.Push(creditors, creditor)
		}
	}

	sort.Slice(transfers, func(i, j int) bool {
		if transfers[i].From != transfers[j].From {
			return transfers[i].From < transfers[j].From
		}
		return transfers[i].To < transfers[j].To
	})
	return transfers
}

// ApplyTransfers returns the balances that remain after the transfers are paid.
func ApplyTransfers(balances map[string]int64, transfers []models.Transfer) map[string]int64 {
	out := make(map[string]int64, len(balances))
	for id, v := range balances {
		out[id] = v
	}
	for _, t := range transfers {
		out[t.From] += t.Amount
		out[t.To] -= t.Amount
	}
	return out
}
