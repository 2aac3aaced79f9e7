package ledger

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/mmynk/famfund/internal/models"
)

// sequentialIDs returns an IDFunc yielding prefix1, prefix2, ...
func sequentialIDs(prefix string) IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry(WithRegistryIDs(sequentialIDs("p")))

	phuong, err := r.Resolve("Phuong")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	again, _ := r.Resolve("Phuong")
	if again != phuong {
		t.Errorf("Resolve returned %s for the same name, want %s", again, phuong)
	}

	padded, _ := r.Resolve("Phuong ")
	if padded == phuong {
		t.Error("names must match exactly, including whitespace")
	}
	if id, ok := r.Lookup("Phuong "); !ok || id != padded {
		t.Errorf("Lookup(%q) = %s, %v, want %s", "Phuong ", id, ok, padded)
	}

	lower, _ := r.Resolve("phuong")
	if lower == phuong {
		t.Error("names must match case-sensitively")
	}

	if got := len(r.Participants()); got != 3 {
		t.Errorf("got %d participants, want 3", got)
	}

	p, err := r.Get(phuong)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.DisplayName != "Phuong" {
		t.Errorf("DisplayName = %q, want Phuong", p.DisplayName)
	}
}

func TestRegistryResolveEmptyName(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Resolve("   "); !errors.Is(err, models.ErrInvalidEvent) {
		t.Errorf("Resolve(blank) error = %v, want ErrInvalidEvent", err)
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
	var fe *models.FieldError
	if !errors.As(err, &fe) || fe.Field != "participant_id" {
		t.Errorf("expected FieldError naming participant_id, got %#v", err)
	}
}

func TestRegistryRestore(t *testing.T) {
	r := NewRegistry(WithRegistryIDs(sequentialIDs("new")))

	if err := r.Restore(models.Participant{ID: "old-1", DisplayName: "Cong"}); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	// Restoring the same participant twice is fine.
	if err := r.Restore(models.Participant{ID: "old-1", DisplayName: "Cong"}); err != nil {
		t.Fatalf("second Restore failed: %v", err)
	}
	id, _ := r.Resolve("Cong")
	if id != "old-1" {
		t.Errorf("Resolve after Restore = %s, want old-1", id)
	}

	if err := r.Restore(models.Participant{ID: "old-2", DisplayName: "Cong"}); !errors.Is(err, models.ErrInvalidEvent) {
		t.Errorf("duplicate name restore error = %v, want ErrInvalidEvent", err)
	}
	if err := r.Restore(models.Participant{ID: "old-1", DisplayName: "Phu"}); !errors.Is(err, models.ErrInvalidEvent) {
		t.Errorf("renamed id restore error = %v, want ErrInvalidEvent", err)
	}
}

func TestParseNames(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"Phuong", []string{"Phuong"}},
		{"Phuong, Cong,Phu", []string{"Phuong", "Cong", "Phu"}},
		{"Phuong; Cong\nPhu, Phuong", []string{"Phuong", "Cong", "Phu"}},
		{" , ,Cong,, ", []string{"Cong"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseNames(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseNames(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
