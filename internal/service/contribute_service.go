package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/famfund/internal/ledger"
	"github.com/mmynk/famfund/internal/metrics"
	"github.com/mmynk/famfund/internal/models"
	"github.com/mmynk/famfund/internal/storage"
	"github.com/mmynk/famfund/pkg/api"
	"github.com/mmynk/famfund/pkg/api/apiconnect"
)

var _ apiconnect.ContributeServiceHandler = (*ContributeService)(nil)

// ContributeService implements the Connect ContributeService: shared expense
// pools whose balances are kept by an in-memory ledger rebuilt from storage.
type ContributeService struct {
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	ledgers map[string]*cachedLedger
}

// cachedLedger serialises all access to one ledger. A ledger is loaded lazily
// the first time it is locked.
type cachedLedger struct {
	mu     sync.Mutex
	loaded bool
	stale  bool
	info   *models.LedgerInfo
	ledger *ledger.Ledger
}

// NewContributeService creates a ContributeService. m may be nil.
func NewContributeService(store storage.Store, m *metrics.Metrics) *ContributeService {
	return &ContributeService{
		store:   store,
		metrics: m,
		now:     time.Now,
		ledgers: make(map[string]*cachedLedger),
	}
}

// CreateLedger creates an empty expense pool owned by the caller.
func (s *ContributeService) CreateLedger(ctx context.Context, req *connect.Request[api.CreateLedgerRequest]) (*connect.Response[api.CreateLedgerResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("ledger name is required")
	}

	slog.Info("CreateLedger request received", "name", name, "user_id", userID)

	info := &models.LedgerInfo{Name: name, OwnerID: userID}
	if err := s.store.CreateLedger(ctx, info); err != nil {
		return nil, connectError("CreateLedger", err)
	}

	slog.Info("Ledger created", "ledger_id", info.ID)
	return connect.NewResponse(&api.CreateLedgerResponse{Ledger: ledgerToAPI(info)}), nil
}

// ListLedgers returns the caller's ledgers.
func (s *ContributeService) ListLedgers(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.ListLedgersResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	infos, err := s.store.ListLedgersByOwner(ctx, userID)
	if err != nil {
		return nil, connectError("ListLedgers", err)
	}

	out := make([]*api.Ledger, len(infos))
	for i, info := range infos {
		out[i] = ledgerToAPI(info)
	}
	return connect.NewResponse(&api.ListLedgersResponse{Ledgers: out}), nil
}

// AddExpense records one shared cost. Names are resolved to participants,
// creating the ones seen for the first time, and the split is returned.
func (s *ContributeService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	msg := req.Msg
	slog.Info("AddExpense request received",
		"ledger_id", msg.LedgerID,
		"amount", msg.Amount,
		"participants_count", len(msg.Participants),
	)

	names := participantNames(msg.Participants, msg.People)
	payerName := strings.TrimSpace(msg.From)
	if payerName == "" {
		return nil, invalidArgument("payer is required")
	}
	if len(names) == 0 {
		return nil, invalidArgument("at least one participant is required")
	}
	if msg.Amount <= 0 {
		return nil, invalidArgument("amount must be positive, got %d", msg.Amount)
	}

	var resp *api.AddExpenseResponse
	err := s.withLedger(ctx, msg.LedgerID, func(c *cachedLedger) error {
		reg := c.ledger.Registry()

		var fresh []string
		for _, name := range append([]string{payerName}, names...) {
			if _, ok := reg.Lookup(name); !ok {
				fresh = append(fresh, name)
			}
		}

		// From here on the cached ledger may be modified; any failure drops it
		// so the next call rebuilds it from storage.
		payer, err := reg.Resolve(payerName)
		if err != nil {
			s.evict(msg.LedgerID, c)
			return err
		}
		participants, err := reg.ResolveAll(names)
		if err != nil {
			s.evict(msg.LedgerID, c)
			return err
		}

		event, err := c.ledger.ApplyEvent(models.ExpenseEvent{
			Date:         s.eventDate(msg.Date),
			TotalAmount:  msg.Amount,
			Payer:        payer,
			Participants: participants,
			Note:         strings.TrimSpace(msg.Note),
		})
		if err != nil {
			s.evict(msg.LedgerID, c)
			return err
		}

		newParticipants := make([]models.Participant, 0, len(fresh))
		seen := make(map[string]bool, len(fresh))
		for _, name := range fresh {
			id, _ := reg.Lookup(name)
			if seen[id] {
				continue
			}
			seen[id] = true
			p, err := reg.Get(id)
			if err != nil {
				s.evict(msg.LedgerID, c)
				return err
			}
			newParticipants = append(newParticipants, p)
		}

		if err := s.store.SaveExpense(ctx, msg.LedgerID, newParticipants, event); err != nil {
			s.evict(msg.LedgerID, c)
			return err
		}

		expense, err := expenseToAPI(c.ledger, event)
		if err != nil {
			return err
		}
		resp = &api.AddExpenseResponse{Expense: expense}
		slog.Info("Expense applied",
			"ledger_id", msg.LedgerID,
			"event_id", event.ID,
			"new_participants", len(newParticipants),
		)
		return nil
	})
	if err != nil {
		return nil, connectError("AddExpense", err)
	}
	s.metrics.ExpenseApplied()
	return connect.NewResponse(resp), nil
}

// ListExpenses returns one page of the ledger history in date order.
func (s *ContributeService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	page := models.Page{Number: int(req.Msg.Page), Size: int(req.Msg.PageSize)}.Normalize()

	resp := &api.ListExpensesResponse{}
	err := s.withLedger(ctx, req.Msg.LedgerID, func(c *cachedLedger) error {
		history := c.ledger.History()
		resp.Total = int32(len(history))

		start := min(page.Offset(), len(history))
		end := min(start+page.Size, len(history))
		resp.Expenses = make([]*api.Expense, 0, end-start)
		for _, event := range history[start:end] {
			expense, err := expenseToAPI(c.ledger, event)
			if err != nil {
				return err
			}
			resp.Expenses = append(resp.Expenses, expense)
		}
		return nil
	})
	if err != nil {
		return nil, connectError("ListExpenses", err)
	}
	return connect.NewResponse(resp), nil
}

// GetBalances returns every participant's net, paid and owed totals.
func (s *ContributeService) GetBalances(ctx context.Context, req *connect.Request[api.LedgerRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	resp := &api.GetBalancesResponse{}
	err := s.withLedger(ctx, req.Msg.LedgerID, func(c *cachedLedger) error {
		summaries, err := c.ledger.Summaries()
		if err != nil {
			return err
		}
		reg := c.ledger.Registry()
		resp.Balances = make([]*api.Balance, len(summaries))
		for i, b := range summaries {
			resp.Balances[i] = &api.Balance{
				ParticipantID: b.ParticipantID,
				Name:          displayName(reg, b.ParticipantID),
				Net:           c.ledger.Balance(b.ParticipantID),
				Paid:          b.TotalPaid,
				Owed:          b.TotalOwed,
			}
		}
		return nil
	})
	if err != nil {
		return nil, connectError("GetBalances", err)
	}
	return connect.NewResponse(resp), nil
}

// ProposeTransfers returns the repayments that would clear the ledger.
func (s *ContributeService) ProposeTransfers(ctx context.Context, req *connect.Request[api.LedgerRequest]) (*connect.Response[api.ProposeTransfersResponse], error) {
	resp := &api.ProposeTransfersResponse{}
	err := s.withLedger(ctx, req.Msg.LedgerID, func(c *cachedLedger) error {
		reg := c.ledger.Registry()
		transfers := c.ledger.ProposeTransfers()
		resp.Transfers = make([]*api.Transfer, len(transfers))
		for i, t := range transfers {
			resp.Transfers[i] = transferToAPI(reg, t)
		}
		return nil
	})
	if err != nil {
		return nil, connectError("ProposeTransfers", err)
	}
	s.metrics.TransfersProposed(len(resp.Transfers))
	return connect.NewResponse(resp), nil
}

// MarkSettled flags an expense as repaid. Settling twice is not an error.
func (s *ContributeService) MarkSettled(ctx context.Context, req *connect.Request[api.MarkSettledRequest]) (*connect.Response[api.MarkSettledResponse], error) {
	slog.Info("MarkSettled request received", "ledger_id", req.Msg.LedgerID, "event_id", req.Msg.EventID)

	resp := &api.MarkSettledResponse{}
	settledNow := false
	err := s.withLedger(ctx, req.Msg.LedgerID, func(c *cachedLedger) error {
		event, err := c.ledger.Event(req.Msg.EventID)
		if err != nil {
			return err
		}
		if !event.Settled {
			if err := s.store.MarkEventSettled(ctx, req.Msg.LedgerID, event.ID); err != nil {
				return err
			}
			if err := c.ledger.MarkSettled(event.ID); err != nil {
				s.evict(req.Msg.LedgerID, c)
				return err
			}
			settledNow = true
			if event, err = c.ledger.Event(event.ID); err != nil {
				return err
			}
		}
		resp.Expense, err = expenseToAPI(c.ledger, event)
		return err
	})
	if err != nil {
		return nil, connectError("MarkSettled", err)
	}
	if settledNow {
		s.metrics.EventSettled()
	}
	return connect.NewResponse(resp), nil
}

// RecordTransfers stores repayments made in the real world. They are kept as a
// log only; balances change when the underlying expenses are marked settled.
func (s *ContributeService) RecordTransfers(ctx context.Context, req *connect.Request[api.RecordTransfersRequest]) (*connect.Response[api.ListTransfersResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.Msg.Transfers) == 0 {
		return nil, invalidArgument("at least one transfer is required")
	}

	resp := &api.ListTransfersResponse{}
	err = s.withLedger(ctx, req.Msg.LedgerID, func(c *cachedLedger) error {
		reg := c.ledger.Registry()
		records := make([]*models.TransferRecord, len(req.Msg.Transfers))
		for i, t := range req.Msg.Transfers {
			if t == nil {
				return models.NewFieldError(models.ErrInvalidEvent, "transfers", "", "contains an empty transfer")
			}
			if t.Amount <= 0 {
				return models.NewFieldError(models.ErrInvalidEvent, "amount", fmt.Sprint(t.Amount), "must be positive")
			}
			if t.FromID == t.ToID {
				return models.NewFieldError(models.ErrInvalidEvent, "to_id", t.ToID, "must differ from from_id")
			}
			for _, id := range []string{t.FromID, t.ToID} {
				if !reg.Has(id) {
					return models.NewFieldError(models.ErrUnknownParticipant, "participant_id", id, "not registered")
				}
			}
			records[i] = &models.TransferRecord{
				LedgerID:  req.Msg.LedgerID,
				FromID:    t.FromID,
				ToID:      t.ToID,
				Amount:    t.Amount,
				CreatedBy: userID,
				Note:      strings.TrimSpace(req.Msg.Note),
			}
		}
		if err := s.store.CreateTransferRecords(ctx, records); err != nil {
			return err
		}
		resp.Records = make([]*api.TransferRecord, len(records))
		for i, r := range records {
			resp.Records[i] = transferRecordToAPI(reg, r)
		}
		return nil
	})
	if err != nil {
		return nil, connectError("RecordTransfers", err)
	}
	slog.Info("Transfers recorded", "ledger_id", req.Msg.LedgerID, "count", len(resp.Records))
	return connect.NewResponse(resp), nil
}

// ListTransfers returns the recorded repayments of a ledger, oldest first.
func (s *ContributeService) ListTransfers(ctx context.Context, req *connect.Request[api.LedgerRequest]) (*connect.Response[api.ListTransfersResponse], error) {
	resp := &api.ListTransfersResponse{}
	err := s.withLedger(ctx, req.Msg.LedgerID, func(c *cachedLedger) error {
		records, err := s.store.ListTransferRecords(ctx, req.Msg.LedgerID)
		if err != nil {
			return err
		}
		reg := c.ledger.Registry()
		resp.Records = make([]*api.TransferRecord, len(records))
		for i, r := range records {
			resp.Records[i] = transferRecordToAPI(reg, r)
		}
		return nil
	})
	if err != nil {
		return nil, connectError("ListTransfers", err)
	}
	return connect.NewResponse(resp), nil
}

// withLedger runs fn with the caller's ledger locked and loaded.
func (s *ContributeService) withLedger(ctx context.Context, ledgerID string, fn func(*cachedLedger) error) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	if ledgerID == "" {
		return invalidArgument("ledger_id is required")
	}

	var c *cachedLedger
	for {
		c = s.cached(ledgerID)
		c.mu.Lock()
		if !c.stale {
			break
		}
		c.mu.Unlock()
	}
	defer c.mu.Unlock()

	if !c.loaded {
		if err := s.load(ctx, ledgerID, c); err != nil {
			s.evict(ledgerID, c)
			return err
		}
	}
	if c.info.OwnerID != userID {
		return connect.NewError(connect.CodePermissionDenied, errNotOwner)
	}
	return fn(c)
}

func (s *ContributeService) cached(ledgerID string) *cachedLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.ledgers[ledgerID]
	if !ok {
		c = &cachedLedger{}
		s.ledgers[ledgerID] = c
	}
	return c
}

// evict drops a cached ledger whose state may have diverged from storage.
// The caller must hold c.mu. Waiters on the old entry see it is stale and
// start over with a fresh one.
func (s *ContributeService) evict(ledgerID string, c *cachedLedger) {
	c.stale = true
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ledgers[ledgerID] == c {
		delete(s.ledgers, ledgerID)
	}
}

// load rebuilds a ledger by restoring its participants and replaying its
// events in the order they were stored.
func (s *ContributeService) load(ctx context.Context, ledgerID string, c *cachedLedger) error {
	info, err := s.store.GetLedger(ctx, ledgerID)
	if err != nil {
		return err
	}
	participants, err := s.store.ListParticipants(ctx, ledgerID)
	if err != nil {
		return err
	}
	events, err := s.store.ListEvents(ctx, ledgerID)
	if err != nil {
		return err
	}

	reg := ledger.NewRegistry()
	for _, p := range participants {
		if err := reg.Restore(p); err != nil {
			return fmt.Errorf("restore participant %s: %w", p.ID, err)
		}
	}
	l := ledger.New(reg)
	for _, event := range events {
		if _, err := l.ApplyEvent(event); err != nil {
			return fmt.Errorf("replay event %s: %w", event.ID, err)
		}
	}

	c.info = info
	c.ledger = l
	c.loaded = true
	slog.Debug("Ledger loaded", "ledger_id", ledgerID, "participants", len(participants), "events", len(events))
	return nil
}

func (s *ContributeService) eventDate(unix int64) time.Time {
	if unix <= 0 {
		return s.now().UTC().Truncate(time.Second)
	}
	return time.Unix(unix, 0).UTC()
}

// participantNames merges the explicit list with the free-text field, dropping
// names from the text that are already listed.
func participantNames(list []string, text string) []string {
	names := make([]string, 0, len(list))
	listed := make(map[string]bool, len(list))
	for _, name := range list {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names = append(names, name)
		listed[name] = true
	}
	for _, name := range ledger.ParseNames(text) {
		if !listed[name] {
			names = append(names, name)
		}
	}
	return names
}

func displayName(reg *ledger.Registry, id string) string {
	p, err := reg.Get(id)
	if err != nil {
		return id
	}
	return p.DisplayName
}

func ledgerToAPI(info *models.LedgerInfo) *api.Ledger {
	return &api.Ledger{ID: info.ID, Name: info.Name, CreatedAt: info.CreatedAt}
}

func expenseToAPI(l *ledger.Ledger, event models.ExpenseEvent) (*api.Expense, error) {
	reg := l.Registry()
	shares, err := l.Shares(event.ID)
	if err != nil {
		return nil, err
	}

	names := reg.Names(event.Participants)
	people := make([]api.Person, len(event.Participants))
	for i, id := range event.Participants {
		people[i] = api.Person{ID: id, Name: names[i]}
	}
	each := make([]api.Share, len(shares))
	for i, sh := range shares {
		each[i] = api.Share{ParticipantID: sh.Participant, Name: displayName(reg, sh.Participant), Owed: sh.Owed}
	}

	return &api.Expense{
		ID:         event.ID,
		Date:       event.Date.Unix(),
		Amount:     event.TotalAmount,
		From:       &api.Person{ID: event.Payer, Name: displayName(reg, event.Payer)},
		People:     people,
		AmountEach: each,
		Note:       event.Note,
		Done:       event.Settled,
	}, nil
}

func transferToAPI(reg *ledger.Registry, t models.Transfer) *api.Transfer {
	return &api.Transfer{
		FromID:   t.From,
		FromName: displayName(reg, t.From),
		ToID:     t.To,
		ToName:   displayName(reg, t.To),
		Amount:   t.Amount,
	}
}

func transferRecordToAPI(reg *ledger.Registry, r *models.TransferRecord) *api.TransferRecord {
	return &api.TransferRecord{
		ID:        r.ID,
		Transfer:  *transferToAPI(reg, models.Transfer{From: r.FromID, To: r.ToID, Amount: r.Amount}),
		Note:      r.Note,
		CreatedAt: r.CreatedAt,
		CreatedBy: r.CreatedBy,
	}
}
