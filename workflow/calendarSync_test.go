package workflow

import (
	"testing"
	"time"

	"github.com/growship/commerce_backend/models"
)

func TestDiffCalendarEvents(t *testing.T) {
	day := func(n int) time.Time {
		return time.Date(2026, 9, n, 0, 0, 0, 0, time.UTC)
	}

	existing := []*models.CalendarEvent{
		{ID: 1, EventType: "payment_due", RelatedType: "order", RelatedId: 10, EventDate: day(1), Status: models.CalendarEventStatusUpcoming},
		{ID: 2, EventType: "po_delivery", RelatedType: "purchase_order", RelatedId: 20, EventDate: day(5), Status: models.CalendarEventStatusUpcoming},
		{ID: 3, EventType: "custom", RelatedType: "user", RelatedId: 0, EventDate: day(9), Status: models.CalendarEventStatusUpcoming, IsCustom: true},
	}

	t.Run("unchanged candidates produce empty diff", func(t *testing.T) {
		candidates := []EventCandidate{
			{EventType: "payment_due", RelatedType: "order", RelatedId: 10, EventDate: day(1)},
			{EventType: "po_delivery", RelatedType: "purchase_order", RelatedId: 20, EventDate: day(5)},
		}
		diff := DiffCalendarEvents(existing, candidates)
		if len(diff.toCreate) != 0 || len(diff.toUpdate) != 0 || len(diff.toCancel) != 0 {
			t.Errorf("expected empty diff, got create=%d update=%d cancel=%d",
				len(diff.toCreate), len(diff.toUpdate), len(diff.toCancel))
		}
	})

	t.Run("new key is created", func(t *testing.T) {
		candidates := []EventCandidate{
			{EventType: "payment_due", RelatedType: "order", RelatedId: 10, EventDate: day(1)},
			{EventType: "po_delivery", RelatedType: "purchase_order", RelatedId: 20, EventDate: day(5)},
			{EventType: "payment_due", RelatedType: "order", RelatedId: 11, EventDate: day(3)},
		}
		diff := DiffCalendarEvents(existing, candidates)
		if len(diff.toCreate) != 1 || diff.toCreate[0].RelatedId != 11 {
			t.Errorf("toCreate = %+v, want one entry for order 11", diff.toCreate)
		}
	})

	t.Run("date drift updates in place", func(t *testing.T) {
		candidates := []EventCandidate{
			{EventType: "payment_due", RelatedType: "order", RelatedId: 10, EventDate: day(2)},
			{EventType: "po_delivery", RelatedType: "purchase_order", RelatedId: 20, EventDate: day(5)},
		}
		diff := DiffCalendarEvents(existing, candidates)
		if len(diff.toUpdate) != 1 {
			t.Fatalf("toUpdate = %+v, want one entry", diff.toUpdate)
		}
		if _, ok := diff.toUpdate[1]; !ok {
			t.Errorf("expected event 1 to be updated, got %+v", diff.toUpdate)
		}
	})

	t.Run("stale key is cancelled not deleted", func(t *testing.T) {
		candidates := []EventCandidate{
			{EventType: "payment_due", RelatedType: "order", RelatedId: 10, EventDate: day(1)},
		}
		diff := DiffCalendarEvents(existing, candidates)
		if len(diff.toCancel) != 1 || diff.toCancel[0] != 2 {
			t.Errorf("toCancel = %v, want [2]", diff.toCancel)
		}
	})

	t.Run("already cancelled events are not cancelled again", func(t *testing.T) {
		cancelled := []*models.CalendarEvent{
			{ID: 4, EventType: "payment_due", RelatedType: "order", RelatedId: 30, EventDate: day(1), Status: models.CalendarEventStatusCancelled},
		}
		diff := DiffCalendarEvents(cancelled, nil)
		if len(diff.toCancel) != 0 {
			t.Errorf("toCancel = %v, want empty", diff.toCancel)
		}
	})

	t.Run("candidate reappearing revives a cancelled event", func(t *testing.T) {
		cancelled := []*models.CalendarEvent{
			{ID: 5, EventType: "payment_due", RelatedType: "order", RelatedId: 40, EventDate: day(1), Status: models.CalendarEventStatusCancelled},
		}
		candidates := []EventCandidate{
			{EventType: "payment_due", RelatedType: "order", RelatedId: 40, EventDate: day(1)},
		}
		diff := DiffCalendarEvents(cancelled, candidates)
		if _, ok := diff.toUpdate[5]; !ok {
			t.Errorf("cancelled event matching a live candidate should be updated, got %+v", diff.toUpdate)
		}
	})

	t.Run("custom events are never touched", func(t *testing.T) {
		diff := DiffCalendarEvents(existing, nil)
		for _, id := range diff.toCancel {
			if id == 3 {
				t.Error("custom event was cancelled by the sync")
			}
		}
	})
}

// a diff applied and recomputed must be empty the second time
func TestDiffCalendarEventsIdempotence(t *testing.T) {
	day := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	candidates := []EventCandidate{
		{EventType: "po_approval_due", RelatedType: "purchase_order", RelatedId: 7, Title: "Review due for PO-000007", EventDate: day},
	}

	first := DiffCalendarEvents(nil, candidates)
	if len(first.toCreate) != 1 {
		t.Fatalf("first run should create one event, got %d", len(first.toCreate))
	}

	// simulate the apply step
	stored := []*models.CalendarEvent{{
		ID:          1,
		EventType:   first.toCreate[0].EventType,
		RelatedType: first.toCreate[0].RelatedType,
		RelatedId:   first.toCreate[0].RelatedId,
		Title:       first.toCreate[0].Title,
		EventDate:   first.toCreate[0].EventDate,
		Status:      models.CalendarEventStatusUpcoming,
	}}

	second := DiffCalendarEvents(stored, candidates)
	if len(second.toCreate) != 0 || len(second.toUpdate) != 0 || len(second.toCancel) != 0 {
		t.Errorf("second run should be a no-op, got create=%d update=%d cancel=%d",
			len(second.toCreate), len(second.toUpdate), len(second.toCancel))
	}
}
