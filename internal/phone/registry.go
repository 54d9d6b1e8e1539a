package phone

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// InvalidSlot is returned by PhoneID for subscriptions that are not bound to a slot.
const InvalidSlot = -1

// Phone is a radio stack bound to one SIM slot.
type Phone struct {
	Slot int    `json:"slot"`
	Name string `json:"name"`
}

// Registry maps subscriptions to slots and slots to phones.
// It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	phones      map[int]Phone
	slotsBySub  map[int]int
	defaultSlot int
}

var ErrUnknownSlot = errors.New("phone: unknown slot")

// NewRegistry returns a registry whose default phone sits in defaultSlot.
func NewRegistry(defaultSlot int) *Registry {
	return &Registry{
		phones:      map[int]Phone{},
		slotsBySub:  map[int]int{},
		defaultSlot: defaultSlot,
	}
}

func (r *Registry) Add(p Phone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phones[p.Slot] = p
}

// Bind records that subscription subID lives in slot.
func (r *Registry) Bind(subID, slot int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.phones[slot]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSlot, slot)
	}
	r.slotsBySub[subID] = slot
	return nil
}

// PhoneID returns the slot index for subID, or InvalidSlot.
func (r *Registry) PhoneID(subID int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if slot, ok := r.slotsBySub[subID]; ok {
		return slot
	}
	return InvalidSlot
}

// Phone returns the phone in slot. Unknown slots, including InvalidSlot, fall
// back to the default phone.
func (r *Registry) Phone(slot int) Phone {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.phones[slot]; ok {
		return p
	}
	return r.defaultLocked()
}

func (r *Registry) Default() Phone {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultLocked()
}

func (r *Registry) defaultLocked() Phone {
	if p, ok := r.phones[r.defaultSlot]; ok {
		return p
	}
	return Phone{Slot: r.defaultSlot}
}

// Phones lists registered phones ordered by slot.
func (r *Registry) Phones() []Phone {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Phone, 0, len(r.phones))
	for _, p := range r.phones {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}
