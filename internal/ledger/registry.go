// Package ledger tracks shared expenses: a participant registry, the events
// applied to it and the running balance of every participant.
//
// Neither Registry nor Ledger is safe for concurrent use. A host that shares one
// between goroutines must serialize access itself.
package ledger

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/famfund/internal/models"
)

// IDFunc produces a new unique identifier.
type IDFunc func() string

func newUUID() string {
	return uuid.New().String()
}

// Registry maps free-text participant names to stable identities.
type Registry struct {
	newID  IDFunc
	byName map[string]string
	byID   map[string]models.Participant
	order  []string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryIDs replaces the UUID generator used for new participants.
func WithRegistryIDs(fn IDFunc) RegistryOption {
	return func(r *Registry) {
		r.newID = fn
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		newID:  newUUID,
		byName: make(map[string]string),
		byID:   make(map[string]models.Participant),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the ID for name, creating a participant on first use.
// Names match case-sensitively and exactly: "Cong" and "Cong " are two
// participants. Callers clean up user input (see ParseNames) before resolving.
func (r *Registry) Resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", models.NewFieldError(models.ErrInvalidEvent, "name", "", "participant name is empty")
	}
	if id, ok := r.byName[name]; ok {
		return id, nil
	}
	p := models.Participant{ID: r.newID(), DisplayName: name}
	r.add(p)
	return p.ID, nil
}

// ResolveAll resolves every name, preserving order.
func (r *Registry) ResolveAll(names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, err := r.Resolve(name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Lookup returns the ID registered for name without creating one.
func (r *Registry) Lookup(name string) (string, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Get returns the participant with the given ID.
func (r *Registry) Get(id string) (models.Participant, error) {
	p, ok := r.byID[id]
	if !ok {
		return models.Participant{}, models.NewFieldError(models.ErrNotFound, "participant_id", id, "no such participant")
	}
	return p, nil
}

// Has reports whether id was ever resolved through this registry.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Restore re-registers a participant loaded from storage, keeping its ID.
func (r *Registry) Restore(p models.Participant) error {
	if p.ID == "" || strings.TrimSpace(p.DisplayName) == "" {
		return models.NewFieldError(models.ErrInvalidEvent, "participant", p.ID, "id and name are required")
	}
	if existing, ok := r.byName[p.DisplayName]; ok && existing != p.ID {
		return models.NewFieldError(models.ErrInvalidEvent, "name", p.DisplayName, "already registered with another id")
	}
	if existing, ok := r.byID[p.ID]; ok {
		if existing.DisplayName != p.DisplayName {
			return models.NewFieldError(models.ErrInvalidEvent, "participant_id", p.ID, "already registered with another name")
		}
		return nil
	}
	r.add(p)
	return nil
}

func (r *Registry) add(p models.Participant) {
	r.byName[p.DisplayName] = p.ID
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
}

// Participants lists every participant in registration order.
func (r *Registry) Participants() []models.Participant {
	out := make([]models.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Names maps participant IDs to display names.
func (r *Registry) Names(ids []string) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = r.byID[id].DisplayName
	}
	return names
}

// ParseNames splits the free-text people field of the contribute form
// ("Phuong, Cong; Phu") into trimmed names. Empty entries and repeats are dropped.
func ParseNames(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	seen := make(map[string]bool, len(fields))
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		names = append(names, f)
	}
	return names
}

// sortedIDs returns the keys of m in ascending order.
func sortedIDs(m map[string]int64) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
