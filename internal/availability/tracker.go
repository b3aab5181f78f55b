// Package availability keeps the gateway's in-memory view of how much
// booking capacity remains per slot and per day. It is a best-effort cache
// over the downstream booking service, which stays the system of record;
// Resync rebuilds the committed counts from downstream state.
package availability

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "revamp/pkg/errors"
	"revamp/pkg/model"
)

const modificationKeySuffix = "modifications"

// Tracker holds one lock per capacity key, so bookings for different slots
// and dates never contend with each other. The registry mutex guards only the
// entry and reservation maps; it is held for map operations and never
// together with an entry lock.
type Tracker struct {
	mu           sync.Mutex
	entries      map[string]*entry
	reservations map[string]string // reservation ID -> entry key

	slotCapacity    int
	modificationCap int // 0 means unlimited
	ttl             time.Duration
	now             func() time.Time
}

// entry is the occupancy state for one capacity key: a bay slot on a date,
// or the modification counter for a date. dead marks entries reaped from the
// registry, so a caller racing the reaper re-resolves the key.
type entry struct {
	mu        sync.Mutex
	dead      bool
	committed int
	pending   map[string]time.Time // reservation ID -> expiry
}

func NewTracker(slotCapacity, modificationCap int, reservationTTL time.Duration) *Tracker {
	return &Tracker{
		entries:         make(map[string]*entry),
		reservations:    make(map[string]string),
		slotCapacity:    slotCapacity,
		modificationCap: modificationCap,
		ttl:             reservationTTL,
		now:             time.Now,
	}
}

func slotKey(date, slotID string) string {
	return date + "|" + slotID
}

func modificationKey(date string) string {
	return date + "|" + modificationKeySuffix
}

func keyDate(key string) string {
	if i := strings.Index(key, "|"); i >= 0 {
		return key[:i]
	}
	return key
}

// ReserveSlot claims one unit of capacity in a bay slot. It returns a
// reservation ID that must later be committed or released. When the slot is
// full it fails with CAPACITY_EXCEEDED and changes nothing.
func (t *Tracker) ReserveSlot(date, slotID string) (string, error) {
	return t.reserve(slotKey(date, slotID), t.slotCapacity,
		"The selected time slot is fully booked")
}

// ReserveModification claims one unit of the daily modification budget.
// A cap of 0 admits any number of projects per day.
func (t *Tracker) ReserveModification(date string) (string, error) {
	return t.reserve(modificationKey(date), t.modificationCap,
		"No modification capacity left on the selected date")
}

func (t *Tracker) reserve(key string, capacity int, fullMessage string) (string, error) {
	e := t.lockEntry(key)
	expired := expireEntryLocked(e, t.now())

	if capacity > 0 && e.committed+len(e.pending) >= capacity {
		e.mu.Unlock()
		t.forget(expired)
		return "", apperrors.CapacityExceeded(fullMessage)
	}

	reservationID := uuid.New().String()
	e.pending[reservationID] = t.now().Add(t.ttl)
	e.mu.Unlock()

	t.mu.Lock()
	for _, id := range expired {
		delete(t.reservations, id)
	}
	t.reservations[reservationID] = key
	t.mu.Unlock()

	return reservationID, nil
}

// Commit converts a pending reservation into committed occupancy, once the
// downstream booking service has accepted the appointment.
func (t *Tracker) Commit(reservationID string) error {
	t.mu.Lock()
	key, ok := t.reservations[reservationID]
	if !ok {
		t.mu.Unlock()
		return apperrors.NotFound("reservation")
	}
	delete(t.reservations, reservationID)
	t.mu.Unlock()

	e := t.lockEntry(key)
	if _, pending := e.pending[reservationID]; pending {
		delete(e.pending, reservationID)
		e.committed++
	}
	e.mu.Unlock()
	return nil
}

// Release drops a pending reservation. Releasing an unknown, expired, or
// already released reservation is a no-op, so failure paths can always
// release without bookkeeping.
func (t *Tracker) Release(reservationID string) {
	t.mu.Lock()
	key, ok := t.reservations[reservationID]
	if ok {
		delete(t.reservations, reservationID)
	}
	e := t.entries[key]
	t.mu.Unlock()

	if !ok || e == nil {
		return
	}

	e.mu.Lock()
	delete(e.pending, reservationID)
	e.mu.Unlock()
}

// SlotBooked returns the occupied capacity of a bay slot, counting both
// committed bookings and in-flight reservations.
func (t *Tracker) SlotBooked(date, slotID string) int {
	return t.booked(slotKey(date, slotID))
}

// ModificationCount returns the occupied daily modification budget.
func (t *Tracker) ModificationCount(date string) int {
	return t.booked(modificationKey(date))
}

func (t *Tracker) booked(key string) int {
	t.mu.Lock()
	e := t.entries[key]
	t.mu.Unlock()
	if e == nil {
		return 0
	}

	e.mu.Lock()
	if e.dead {
		e.mu.Unlock()
		return 0
	}
	expired := expireEntryLocked(e, t.now())
	n := e.committed + len(e.pending)
	e.mu.Unlock()

	t.forget(expired)
	return n
}

// Resync replaces the committed counts for every date in [from, to] with the
// given downstream appointments. Pending reservations survive a resync; only
// active appointments occupy capacity.
func (t *Tracker) Resync(from, to string, appointments []model.Appointment) {
	counts := make(map[string]int)
	for _, a := range appointments {
		if !a.Status.IsActive() {
			continue
		}
		if a.Date < from || a.Date > to {
			continue
		}

		switch a.ServiceType {
		case model.ServiceTypeModification:
			counts[modificationKey(a.Date)]++
		case model.ServiceTypeService:
			if a.TimeSlotID == "" {
				continue
			}
			counts[slotKey(a.Date, a.TimeSlotID)]++
		}
	}

	t.mu.Lock()
	existing := make(map[string]*entry, len(t.entries))
	for key, e := range t.entries {
		existing[key] = e
	}
	t.mu.Unlock()

	for key, e := range existing {
		date := keyDate(key)
		if date < from || date > to {
			continue
		}
		e.mu.Lock()
		if !e.dead {
			e.committed = counts[key]
			delete(counts, key)
		}
		e.mu.Unlock()
	}

	for key, n := range counts {
		e := t.lockEntry(key)
		e.committed = n
		e.mu.Unlock()
	}

	t.dropEmpty()
}

// lockEntry returns the entry for key with its lock held, creating the entry
// when missing. An entry reaped between the registry lookup and the entry
// lock is detected via dead and resolved again.
func (t *Tracker) lockEntry(key string) *entry {
	for {
		t.mu.Lock()
		e, ok := t.entries[key]
		if !ok {
			e = &entry{pending: make(map[string]time.Time)}
			t.entries[key] = e
		}
		t.mu.Unlock()

		e.mu.Lock()
		if !e.dead {
			return e
		}
		e.mu.Unlock()
	}
}

// forget unregisters reservation IDs whose pending claims already expired.
func (t *Tracker) forget(ids []string) {
	if len(ids) == 0 {
		return
	}
	t.mu.Lock()
	for _, id := range ids {
		delete(t.reservations, id)
	}
	t.mu.Unlock()
}

// expireEntryLocked reaps pending reservations whose TTL passed without a
// commit and returns their IDs for unregistering. Caller holds e.mu.
func expireEntryLocked(e *entry, now time.Time) []string {
	var expired []string
	for id, expiry := range e.pending {
		if now.After(expiry) {
			delete(e.pending, id)
			expired = append(expired, id)
		}
	}
	return expired
}

// dropEmpty reaps entries holding no capacity, keeping the table bounded
// across resyncs. TryLock skips entries mid-operation; a later pass gets
// them.
func (t *Tracker) dropEmpty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, e := range t.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.committed == 0 && len(e.pending) == 0 {
			e.dead = true
			delete(t.entries, key)
		}
		e.mu.Unlock()
	}
}
