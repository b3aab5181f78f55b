package availability

import (
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "revamp/pkg/errors"
	"revamp/pkg/model"
)

const testDate = "2025-01-06"

func TestReserveSlot_CapacityEnforced(t *testing.T) {
	tracker := NewTracker(2, 0, time.Minute)

	if _, err := tracker.ReserveSlot(testDate, "09:00-12:00"); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}
	if _, err := tracker.ReserveSlot(testDate, "09:00-12:00"); err != nil {
		t.Fatalf("second reservation failed: %v", err)
	}

	_, err := tracker.ReserveSlot(testDate, "09:00-12:00")
	if err == nil {
		t.Fatal("expected third reservation to fail")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeCapacityExceeded {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.CodeCapacityExceeded)
	}
}

func TestReserveSlot_IndependentSlots(t *testing.T) {
	tracker := NewTracker(1, 0, time.Minute)

	if _, err := tracker.ReserveSlot(testDate, "09:00-12:00"); err != nil {
		t.Fatalf("reservation failed: %v", err)
	}
	if _, err := tracker.ReserveSlot(testDate, "12:00-15:00"); err != nil {
		t.Errorf("different slot should be unaffected: %v", err)
	}
	if _, err := tracker.ReserveSlot("2025-01-07", "09:00-12:00"); err != nil {
		t.Errorf("same slot on a different date should be unaffected: %v", err)
	}
}

func TestReserveSlot_ExactlyOneWinner(t *testing.T) {
	tracker := NewTracker(1, 0, time.Minute)

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tracker.ReserveSlot(testDate, "09:00-12:00")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		if err == nil {
			won++
		} else {
			lost++
		}
	}

	if won != 1 {
		t.Errorf("winners = %d, want exactly 1", won)
	}
	if lost != attempts-1 {
		t.Errorf("losers = %d, want %d", lost, attempts-1)
	}
}

func TestReserveSlot_ConcurrentCapacityN(t *testing.T) {
	const capacity = 5
	const attempts = 40

	tracker := NewTracker(capacity, 0, time.Minute)

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tracker.ReserveSlot(testDate, "09:00-12:00")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var won int
	for err := range results {
		if err == nil {
			won++
		}
	}

	if won != capacity {
		t.Errorf("winners = %d, want %d", won, capacity)
	}
	if got := tracker.SlotBooked(testDate, "09:00-12:00"); got != capacity {
		t.Errorf("SlotBooked = %d, want %d", got, capacity)
	}
}

func TestReserve_ConcurrentAcrossKeys(t *testing.T) {
	tracker := NewTracker(1, 1, time.Minute)

	type claim struct{ date, slotID string }
	var claims []claim
	for day := 1; day <= 10; day++ {
		date := fmt.Sprintf("2025-02-%02d", day)
		for _, slotID := range []string{"09:00-12:00", "12:00-15:00", "15:00-18:00"} {
			claims = append(claims, claim{date, slotID})
		}
	}

	// Every claim targets its own key, so with capacity 1 per slot all of
	// them must win regardless of interleaving. The per-date modification
	// budget is contended by three goroutines and admits exactly one.
	var wg sync.WaitGroup
	errs := make(chan error, len(claims)*2)
	for _, c := range claims {
		wg.Add(1)
		go func(c claim) {
			defer wg.Done()
			if _, err := tracker.ReserveSlot(c.date, c.slotID); err != nil {
				errs <- err
			}
			if _, err := tracker.ReserveModification(c.date); err != nil {
				if apperrors.AsAppError(err).Code != apperrors.CodeCapacityExceeded {
					errs <- err
				}
			}
		}(c)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected reservation failure: %v", err)
	}
	for _, c := range claims {
		if got := tracker.SlotBooked(c.date, c.slotID); got != 1 {
			t.Errorf("SlotBooked(%s, %s) = %d, want 1", c.date, c.slotID, got)
		}
	}
	for day := 1; day <= 10; day++ {
		date := fmt.Sprintf("2025-02-%02d", day)
		if got := tracker.ModificationCount(date); got != 1 {
			t.Errorf("ModificationCount(%s) = %d, want 1", date, got)
		}
	}
}

func TestRelease_ReclaimsCapacity(t *testing.T) {
	tracker := NewTracker(1, 0, time.Minute)

	id, err := tracker.ReserveSlot(testDate, "09:00-12:00")
	if err != nil {
		t.Fatalf("reservation failed: %v", err)
	}

	if _, err := tracker.ReserveSlot(testDate, "09:00-12:00"); err == nil {
		t.Fatal("slot should be full")
	}

	tracker.Release(id)

	if _, err := tracker.ReserveSlot(testDate, "09:00-12:00"); err != nil {
		t.Errorf("released capacity should be reusable: %v", err)
	}
}

func TestRelease_Idempotent(t *testing.T) {
	tracker := NewTracker(1, 0, time.Minute)

	id, err := tracker.ReserveSlot(testDate, "09:00-12:00")
	if err != nil {
		t.Fatalf("reservation failed: %v", err)
	}

	tracker.Release(id)
	tracker.Release(id)
	tracker.Release("does-not-exist")

	if got := tracker.SlotBooked(testDate, "09:00-12:00"); got != 0 {
		t.Errorf("SlotBooked = %d, want 0 after repeated releases", got)
	}
}

func TestCommit_PersistsAcrossRelease(t *testing.T) {
	tracker := NewTracker(1, 0, time.Minute)

	id, err := tracker.ReserveSlot(testDate, "09:00-12:00")
	if err != nil {
		t.Fatalf("reservation failed: %v", err)
	}
	if err := tracker.Commit(id); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	// Committed occupancy is not touched by a stray release of the same ID.
	tracker.Release(id)

	if got := tracker.SlotBooked(testDate, "09:00-12:00"); got != 1 {
		t.Errorf("SlotBooked = %d, want 1 after commit", got)
	}
}

func TestCommit_UnknownReservation(t *testing.T) {
	tracker := NewTracker(1, 0, time.Minute)

	err := tracker.Commit("does-not-exist")
	if err == nil {
		t.Fatal("expected error for unknown reservation")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("error code = %s, want %s", apperrors.AsAppError(err).Code, apperrors.CodeNotFound)
	}
}

func TestReservation_ExpiresAfterTTL(t *testing.T) {
	tracker := NewTracker(1, 0, time.Minute)

	current := time.Now()
	tracker.now = func() time.Time { return current }

	if _, err := tracker.ReserveSlot(testDate, "09:00-12:00"); err != nil {
		t.Fatalf("reservation failed: %v", err)
	}
	if _, err := tracker.ReserveSlot(testDate, "09:00-12:00"); err == nil {
		t.Fatal("slot should be full")
	}

	current = current.Add(2 * time.Minute)

	if _, err := tracker.ReserveSlot(testDate, "09:00-12:00"); err != nil {
		t.Errorf("expired reservation should free capacity: %v", err)
	}
}

func TestReserveModification_CapAndUnlimited(t *testing.T) {
	t.Run("cap enforced", func(t *testing.T) {
		tracker := NewTracker(1, 2, time.Minute)

		for i := 0; i < 2; i++ {
			if _, err := tracker.ReserveModification(testDate); err != nil {
				t.Fatalf("reservation %d failed: %v", i+1, err)
			}
		}
		if _, err := tracker.ReserveModification(testDate); err == nil {
			t.Error("expected cap to reject third project")
		}
		if _, err := tracker.ReserveModification("2025-01-07"); err != nil {
			t.Errorf("other dates keep their own budget: %v", err)
		}
	})

	t.Run("zero cap is unlimited", func(t *testing.T) {
		tracker := NewTracker(1, 0, time.Minute)

		for i := 0; i < 25; i++ {
			if _, err := tracker.ReserveModification(testDate); err != nil {
				t.Fatalf("reservation %d failed: %v", i+1, err)
			}
		}
	})
}

func TestModifications_DoNotConsumeSlotCapacity(t *testing.T) {
	tracker := NewTracker(1, 0, time.Minute)

	if _, err := tracker.ReserveModification(testDate); err != nil {
		t.Fatalf("modification reservation failed: %v", err)
	}
	if _, err := tracker.ReserveSlot(testDate, "09:00-12:00"); err != nil {
		t.Errorf("bay slot should be unaffected by modification bookings: %v", err)
	}
}

func TestResync_RebuildsCommittedCounts(t *testing.T) {
	tracker := NewTracker(2, 0, time.Minute)

	// Local state drifted: one committed booking downstream no longer knows.
	id, _ := tracker.ReserveSlot(testDate, "09:00-12:00")
	if err := tracker.Commit(id); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	downstream := []model.Appointment{
		{ID: "a1", ServiceType: model.ServiceTypeService, Date: testDate, TimeSlotID: "12:00-15:00", Status: model.StatusConfirmed},
		{ID: "a2", ServiceType: model.ServiceTypeModification, Date: testDate, Status: model.StatusPending},
		{ID: "a3", ServiceType: model.ServiceTypeService, Date: testDate, TimeSlotID: "12:00-15:00", Status: model.StatusCancelled},
		{ID: "a4", ServiceType: model.ServiceTypeService, Date: "2030-01-01", TimeSlotID: "09:00-12:00", Status: model.StatusConfirmed},
	}

	tracker.Resync(testDate, "2025-01-20", downstream)

	if got := tracker.SlotBooked(testDate, "09:00-12:00"); got != 0 {
		t.Errorf("stale committed count survived resync: %d", got)
	}
	if got := tracker.SlotBooked(testDate, "12:00-15:00"); got != 1 {
		t.Errorf("SlotBooked(12:00-15:00) = %d, want 1 (cancelled must not count)", got)
	}
	if got := tracker.ModificationCount(testDate); got != 1 {
		t.Errorf("ModificationCount = %d, want 1", got)
	}
	if got := tracker.SlotBooked("2030-01-01", "09:00-12:00"); got != 0 {
		t.Errorf("appointment outside window must be ignored, got %d", got)
	}
}

func TestResync_KeepsPendingReservations(t *testing.T) {
	tracker := NewTracker(2, 0, time.Minute)

	id, err := tracker.ReserveSlot(testDate, "09:00-12:00")
	if err != nil {
		t.Fatalf("reservation failed: %v", err)
	}

	tracker.Resync(testDate, testDate, nil)

	if got := tracker.SlotBooked(testDate, "09:00-12:00"); got != 1 {
		t.Errorf("pending reservation lost in resync: booked = %d, want 1", got)
	}
	if err := tracker.Commit(id); err != nil {
		t.Errorf("reservation should still be committable after resync: %v", err)
	}
}
