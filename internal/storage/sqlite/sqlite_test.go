package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/mmynk/famfund/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *SQLiteStore, email string) *models.User {
	t.Helper()
	user := models.NewUser(email, "Test User", "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestMigrateIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	store.Close()

	if err := Migrate(dbPath); err != nil {
		t.Fatalf("Migrate on an up-to-date database failed: %v", err)
	}
	store, err = New(dbPath)
	if err != nil {
		t.Fatalf("reopening store failed: %v", err)
	}
	store.Close()
}

func TestMigrateCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "data", "test.db")
	if err := Migrate(dbPath); err != nil {
		t.Fatalf("Migrate into a missing directory failed: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(dbPath)); err != nil || !info.IsDir() {
		t.Fatalf("database directory not created: %v", err)
	}

	store, err := New(filepath.Join(t.TempDir(), "other", "test.db"))
	if err != nil {
		t.Fatalf("New into a missing directory failed: %v", err)
	}
	store.Close()
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, store, "lan@example.com")

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "lan@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("ID mismatch: got %s, want %s", got.ID, user.ID)
		}
	})

	t.Run("GetUserByID unknown", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "missing")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := models.NewUser("lan@example.com", "Other", "hash")
		if err := store.CreateUser(ctx, dup); !errors.Is(err, models.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestLedgers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, store, "owner@example.com")

	ledger := &models.LedgerInfo{Name: "Family", OwnerID: owner.ID}
	if err := store.CreateLedger(ctx, ledger); err != nil {
		t.Fatalf("CreateLedger failed: %v", err)
	}
	if ledger.ID == "" || ledger.CreatedAt == 0 {
		t.Fatal("Expected ID and CreatedAt to be generated")
	}

	t.Run("GetLedger", func(t *testing.T) {
		got, err := store.GetLedger(ctx, ledger.ID)
		if err != nil {
			t.Fatalf("GetLedger failed: %v", err)
		}
		if got.Name != "Family" || got.OwnerID != owner.ID {
			t.Errorf("unexpected ledger: %+v", got)
		}
	})

	t.Run("GetLedger unknown", func(t *testing.T) {
		if _, err := store.GetLedger(ctx, "nope"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SaveExpense and replay", func(t *testing.T) {
		people := []models.Participant{
			{ID: "p-phuong", DisplayName: "Phuong"},
			{ID: "p-cong", DisplayName: "Cong"},
		}
		first := models.ExpenseEvent{
			ID:           "e1",
			Date:         time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			TotalAmount:  100,
			Payer:        "p-phuong",
			Participants: []string{"p-phuong", "p-cong"},
			Note:         "market",
		}
		if err := store.SaveExpense(ctx, ledger.ID, people, first); err != nil {
			t.Fatalf("SaveExpense failed: %v", err)
		}

		second := models.ExpenseEvent{
			ID:           "e2",
			Date:         time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			TotalAmount:  30,
			Payer:        "p-cong",
			Participants: []string{"p-phu"},
		}
		if err := store.SaveExpense(ctx, ledger.ID, []models.Participant{{ID: "p-phu", DisplayName: "Phu"}}, second); err != nil {
			t.Fatalf("SaveExpense failed: %v", err)
		}

		participants, err := store.ListParticipants(ctx, ledger.ID)
		if err != nil {
			t.Fatalf("ListParticipants failed: %v", err)
		}
		if len(participants) != 3 || participants[2].DisplayName != "Phu" {
			t.Errorf("unexpected participants: %+v", participants)
		}

		events, err := store.ListEvents(ctx, ledger.ID)
		if err != nil {
			t.Fatalf("ListEvents failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(events))
		}
		// Insertion order, not date order.
		if events[0].ID != "e1" || events[1].ID != "e2" {
			t.Errorf("events out of order: %s, %s", events[0].ID, events[1].ID)
		}
		if !events[0].Date.Equal(first.Date) {
			t.Errorf("Date mismatch: got %v, want %v", events[0].Date, first.Date)
		}
		if len(events[0].Participants) != 2 || events[0].Note != "market" || events[0].Settled {
			t.Errorf("unexpected first event: %+v", events[0])
		}
		// Entry order survives the reload even though "p-cong" sorts first.
		if !reflect.DeepEqual(events[0].Participants, first.Participants) {
			t.Errorf("participants = %v, want %v", events[0].Participants, first.Participants)
		}
	})

	t.Run("SaveExpense is atomic", func(t *testing.T) {
		bad := models.ExpenseEvent{
			ID:           "e-bad",
			Date:         time.Now(),
			TotalAmount:  10,
			Payer:        "p-new",
			Participants: []string{"p-does-not-exist"},
		}
		if err := store.SaveExpense(ctx, ledger.ID, []models.Participant{{ID: "p-new", DisplayName: "New"}}, bad); err == nil {
			t.Fatal("expected foreign key failure")
		}
		participants, _ := store.ListParticipants(ctx, ledger.ID)
		for _, p := range participants {
			if p.ID == "p-new" {
				t.Error("participant from failed expense was persisted")
			}
		}
	})

	t.Run("MarkEventSettled", func(t *testing.T) {
		if err := store.MarkEventSettled(ctx, ledger.ID, "e1"); err != nil {
			t.Fatalf("MarkEventSettled failed: %v", err)
		}
		events, _ := store.ListEvents(ctx, ledger.ID)
		if !events[0].Settled {
			t.Error("expected e1 to be settled")
		}
		if err := store.MarkEventSettled(ctx, ledger.ID, "missing"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Transfers", func(t *testing.T) {
		records := []*models.TransferRecord{
			{LedgerID: ledger.ID, FromID: "p-cong", ToID: "p-phuong", Amount: 50, CreatedBy: owner.ID, CreatedAt: 100},
			{LedgerID: ledger.ID, FromID: "p-phu", ToID: "p-cong", Amount: 30, CreatedBy: owner.ID, CreatedAt: 200, Note: "cash"},
		}
		if err := store.CreateTransferRecords(ctx, records); err != nil {
			t.Fatalf("CreateTransferRecords failed: %v", err)
		}
		got, err := store.ListTransferRecords(ctx, ledger.ID)
		if err != nil {
			t.Fatalf("ListTransferRecords failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 transfers, got %d", len(got))
		}
		if got[0].Note != "cash" || got[1].Note != "" {
			t.Errorf("expected newest first with notes preserved, got %+v, %+v", got[0], got[1])
		}
	})

	t.Run("ListLedgersByOwner", func(t *testing.T) {
		other := &models.LedgerInfo{Name: "Trip", OwnerID: owner.ID, CreatedAt: ledger.CreatedAt + 10}
		if err := store.CreateLedger(ctx, other); err != nil {
			t.Fatalf("CreateLedger failed: %v", err)
		}
		ledgers, err := store.ListLedgersByOwner(ctx, owner.ID)
		if err != nil {
			t.Fatalf("ListLedgersByOwner failed: %v", err)
		}
		if len(ledgers) != 2 || ledgers[0].Name != "Trip" {
			t.Errorf("unexpected ledgers: %+v", ledgers)
		}
	})
}

func TestFinance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, store, "finance@example.com")
	stranger := createUser(t, store, "stranger@example.com")

	food := &models.Category{UserID: user.ID, Name: "Food", Type: models.TxSpend, Note: "Market and restaurants"}
	salary := &models.Category{UserID: user.ID, Name: "Salary", Type: models.TxIncome}
	bank := &models.Category{UserID: user.ID, Name: "Bank", Type: models.TxSave}
	for _, c := range []*models.Category{food, salary, bank} {
		if err := store.CreateCategory(ctx, c); err != nil {
			t.Fatalf("CreateCategory failed: %v", err)
		}
	}

	day := func(d int) int64 { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC).Unix() }
	txs := []*models.Transaction{
		{UserID: user.ID, CategoryID: salary.ID, Type: models.TxIncome, Date: day(1), Amount: 10000, Note: "January salary"},
		{UserID: user.ID, CategoryID: food.ID, Type: models.TxSpend, Date: day(2), Amount: 250, Note: "Pho for lunch"},
		{UserID: user.ID, CategoryID: food.ID, Type: models.TxSpend, Date: day(3), Amount: 120, Note: "coffee"},
		{UserID: user.ID, CategoryID: food.ID, Type: models.TxSpend, Date: day(10), Amount: 300, Note: "PHO dinner"},
		{UserID: user.ID, CategoryID: bank.ID, Type: models.TxSave, Date: day(15), Amount: 2000},
	}
	for _, tx := range txs {
		if err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	t.Run("ListCategories by type", func(t *testing.T) {
		cats, err := store.ListCategories(ctx, user.ID, models.CategoryFilter{Type: models.TxSpend})
		if err != nil {
			t.Fatalf("ListCategories failed: %v", err)
		}
		if len(cats) != 1 || cats[0].Name != "Food" {
			t.Errorf("unexpected categories: %+v", cats)
		}
		all, _ := store.ListCategories(ctx, user.ID, models.CategoryFilter{})
		if len(all) != 3 {
			t.Errorf("expected 3 categories, got %d", len(all))
		}
	})

	t.Run("ListCategories by name and note", func(t *testing.T) {
		tests := []struct {
			name   string
			filter models.CategoryFilter
			want   []string
		}{
			{"name substring", models.CategoryFilter{Name: "AL"}, []string{"Salary"}},
			{"note substring", models.CategoryFilter{Note: "restaurant"}, []string{"Food"}},
			{"name and type", models.CategoryFilter{Name: "a", Type: models.TxSave}, []string{"Bank"}},
			{"wildcards are literal", models.CategoryFilter{Name: "_"}, nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cats, err := store.ListCategories(ctx, user.ID, tt.filter)
				if err != nil {
					t.Fatalf("ListCategories failed: %v", err)
				}
				var names []string
				for _, c := range cats {
					names = append(names, c.Name)
				}
				if !reflect.DeepEqual(names, tt.want) {
					t.Errorf("got %v, want %v", names, tt.want)
				}
			})
		}
	})

	t.Run("category names are unique ignoring case", func(t *testing.T) {
		dup := &models.Category{UserID: user.ID, Name: "FOOD", Type: models.TxSpend}
		if err := store.CreateCategory(ctx, dup); !errors.Is(err, models.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
		otherType := &models.Category{UserID: user.ID, Name: "food", Type: models.TxIncome}
		if err := store.CreateCategory(ctx, otherType); err != nil {
			t.Errorf("same name with another type should be allowed: %v", err)
		}
		if err := store.DeleteCategory(ctx, user.ID, otherType.ID); err != nil {
			t.Fatalf("DeleteCategory failed: %v", err)
		}
	})

	t.Run("UpdateCategory", func(t *testing.T) {
		gifts := &models.Category{UserID: user.ID, Name: "Gifts", Type: models.TxSpend}
		if err := store.CreateCategory(ctx, gifts); err != nil {
			t.Fatalf("CreateCategory failed: %v", err)
		}
		t.Cleanup(func() { store.DeleteCategory(ctx, user.ID, gifts.ID) })

		gifts.Name, gifts.Type, gifts.Note = "Presents", models.TxIncome, "birthdays"
		if err := store.UpdateCategory(ctx, gifts); err != nil {
			t.Fatalf("UpdateCategory failed: %v", err)
		}
		got, err := store.GetCategory(ctx, user.ID, gifts.ID)
		if err != nil {
			t.Fatalf("GetCategory failed: %v", err)
		}
		if got.Name != "Presents" || got.Type != models.TxIncome || got.Note != "birthdays" {
			t.Errorf("update not persisted: %+v", got)
		}

		clash := *gifts
		clash.Name = "salary"
		if err := store.UpdateCategory(ctx, &clash); !errors.Is(err, models.ErrAlreadyExists) {
			t.Errorf("rename onto an existing name: expected ErrAlreadyExists, got %v", err)
		}

		retype := *food
		retype.Type = models.TxSave
		if err := store.UpdateCategory(ctx, &retype); !errors.Is(err, models.ErrInUse) {
			t.Errorf("type change with transactions: expected ErrInUse, got %v", err)
		}
		if got, _ := store.GetCategory(ctx, user.ID, food.ID); got.Type != models.TxSpend {
			t.Errorf("refused update changed the type to %s", got.Type)
		}

		foreign := *gifts
		foreign.UserID = stranger.ID
		if err := store.UpdateCategory(ctx, &foreign); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("other user's category: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("categories are private", func(t *testing.T) {
		if _, err := store.GetCategory(ctx, stranger.ID, food.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListTransactions filters", func(t *testing.T) {
		tests := []struct {
			name      string
			filter    models.TransactionFilter
			page      models.Page
			wantTotal int
			wantIDs   []string
		}{
			{"all newest first", models.TransactionFilter{}, models.Page{}, 5,
				[]string{txs[4].ID, txs[3].ID, txs[2].ID, txs[1].ID, txs[0].ID}},
			{"by type", models.TransactionFilter{Type: models.TxSpend}, models.Page{}, 3,
				[]string{txs[3].ID, txs[2].ID, txs[1].ID}},
			{"note is case-insensitive", models.TransactionFilter{Note: "pho"}, models.Page{}, 2,
				[]string{txs[3].ID, txs[1].ID}},
			{"date range inclusive", models.TransactionFilter{DateFrom: day(2), DateTo: day(10)}, models.Page{}, 3,
				[]string{txs[3].ID, txs[2].ID, txs[1].ID}},
			{"by categories", models.TransactionFilter{CategoryIDs: []string{salary.ID, bank.ID}}, models.Page{}, 2,
				[]string{txs[4].ID, txs[0].ID}},
			{"second page", models.TransactionFilter{}, models.Page{Number: 2, Size: 2}, 5,
				[]string{txs[2].ID, txs[1].ID}},
			{"like wildcards are literal", models.TransactionFilter{Note: "%"}, models.Page{}, 0, nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, total, err := store.ListTransactions(ctx, user.ID, tt.filter, tt.page)
				if err != nil {
					t.Fatalf("ListTransactions failed: %v", err)
				}
				if total != tt.wantTotal {
					t.Errorf("total = %d, want %d", total, tt.wantTotal)
				}
				if len(got) != len(tt.wantIDs) {
					t.Fatalf("got %d transactions, want %d", len(got), len(tt.wantIDs))
				}
				for i := range got {
					if got[i].ID != tt.wantIDs[i] {
						t.Errorf("result %d = %s, want %s", i, got[i].ID, tt.wantIDs[i])
					}
				}
			})
		}
	})

	t.Run("Overview", func(t *testing.T) {
		o, err := store.Overview(ctx, user.ID, 0, 0)
		if err != nil {
			t.Fatalf("Overview failed: %v", err)
		}
		if o.Income != 10000 || o.Spend != 670 || o.Save != 2000 || o.Remain() != 7330 {
			t.Errorf("unexpected overview: %+v remain=%d", o, o.Remain())
		}
	})

	t.Run("Update and delete transaction", func(t *testing.T) {
		tx := txs[2]
		tx.Amount = 150
		tx.Note = "iced coffee"
		if err := store.UpdateTransaction(ctx, tx); err != nil {
			t.Fatalf("UpdateTransaction failed: %v", err)
		}
		got, err := store.GetTransaction(ctx, user.ID, tx.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if got.Amount != 150 || got.Note != "iced coffee" {
			t.Errorf("update not persisted: %+v", got)
		}

		if err := store.DeleteTransaction(ctx, stranger.ID, tx.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("stranger delete: expected ErrNotFound, got %v", err)
		}
		if err := store.DeleteTransaction(ctx, user.ID, tx.ID); err != nil {
			t.Fatalf("DeleteTransaction failed: %v", err)
		}
		if _, err := store.GetTransaction(ctx, user.ID, tx.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("DeleteCategory cascades", func(t *testing.T) {
		if err := store.DeleteCategory(ctx, user.ID, food.ID); err != nil {
			t.Fatalf("DeleteCategory failed: %v", err)
		}
		_, total, _ := store.ListTransactions(ctx, user.ID, models.TransactionFilter{Type: models.TxSpend}, models.Page{})
		if total != 0 {
			t.Errorf("expected spend transactions to be gone, %d left", total)
		}
	})
}
