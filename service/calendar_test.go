package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kashvi5907-create/legalease/backend/config"
	"github.com/kashvi5907-create/legalease/backend/model"
)

type fakeEventCreator struct {
	events  []CalendarEvent
	failAt  int // 1-based index of the insert that fails, 0 for never
	inserts int
}

func (f *fakeEventCreator) CreateEvent(_ context.Context, event CalendarEvent) error {
	f.inserts++
	if f.failAt > 0 && f.inserts == f.failAt {
		return errors.New("googleapi: 403 insufficient permissions")
	}
	f.events = append(f.events, event)
	return nil
}

func TestSyncDeadlinesFiltersUnresolvableDates(t *testing.T) {
	fake := &fakeEventCreator{}
	svc := NewCalendarService(fake)

	deadlines := []model.Deadline{
		{Obligation: "Pay invoice", Date: "2024-03-01"},
		{Obligation: "Give notice", Date: ""},
		{Obligation: "Renew lease", Date: "within 30 days"},
		{Obligation: "File report", Date: "2024-12-31"},
	}

	created, err := svc.SyncDeadlines(context.Background(), deadlines, "lease.pdf")
	if err != nil {
		t.Fatalf("SyncDeadlines failed: %v", err)
	}
	if created != 2 {
		t.Errorf("Expected 2 events created, got %d", created)
	}
	if len(fake.events) != 2 {
		t.Fatalf("Expected 2 inserts, got %d", len(fake.events))
	}

	first := fake.events[0]
	if !strings.Contains(first.Summary, "Pay invoice") {
		t.Errorf("Expected obligation in summary, got %q", first.Summary)
	}
	if !strings.Contains(first.Description, "lease.pdf") {
		t.Errorf("Expected source document in description, got %q", first.Description)
	}
	if first.Date != "2024-03-01" {
		t.Errorf("Expected event date 2024-03-01, got %q", first.Date)
	}
}

func TestSyncDeadlinesNoResolvableDates(t *testing.T) {
	fake := &fakeEventCreator{}
	svc := NewCalendarService(fake)

	deadlines := []model.Deadline{
		{Obligation: "Give notice", Date: "upon termination"},
		{Obligation: "Respond", Date: ""},
	}

	created, err := svc.SyncDeadlines(context.Background(), deadlines, "lease.pdf")
	if err != nil {
		t.Fatalf("SyncDeadlines failed: %v", err)
	}
	if created != 0 || fake.inserts != 0 {
		t.Errorf("Expected no inserts, got %d created / %d attempted", created, fake.inserts)
	}
}

func TestSyncDeadlinesPartialFailureKeepsCount(t *testing.T) {
	fake := &fakeEventCreator{failAt: 3}
	svc := NewCalendarService(fake)

	deadlines := []model.Deadline{
		{Obligation: "One", Date: "2024-01-01"},
		{Obligation: "Two", Date: "2024-02-01"},
		{Obligation: "Three", Date: "2024-03-01"},
		{Obligation: "Four", Date: "2024-04-01"},
	}

	created, err := svc.SyncDeadlines(context.Background(), deadlines, "lease.pdf")
	if err == nil {
		t.Fatal("Expected error from failing insert")
	}
	// The first two events exist in the calendar and the count says so.
	if created != 2 {
		t.Errorf("Expected count 2 for events created before the failure, got %d", created)
	}
	if len(fake.events) != 2 {
		t.Errorf("Expected 2 events to remain, got %d", len(fake.events))
	}
}

func TestSyncDeadlinesRejectsLooseDateShapes(t *testing.T) {
	fake := &fakeEventCreator{}
	svc := NewCalendarService(fake)

	// Near misses around the strict YYYY-MM-DD shape.
	deadlines := []model.Deadline{
		{Obligation: "A", Date: "2024-3-01"},
		{Obligation: "B", Date: "2024-03-01 "},
		{Obligation: "C", Date: "on 2024-03-01"},
		{Obligation: "D", Date: "2024-03-01T00:00:00Z"},
	}

	created, err := svc.SyncDeadlines(context.Background(), deadlines, "doc.pdf")
	if err != nil {
		t.Fatalf("SyncDeadlines failed: %v", err)
	}
	if created != 0 {
		t.Errorf("Expected loose date shapes skipped, created %d", created)
	}
}

func TestNewGoogleEventCreatorMissingCredentials(t *testing.T) {
	cfg := &config.CalendarConfig{
		CredentialsFile: filepath.Join(t.TempDir(), "credentials.json"),
		TokenFile:       filepath.Join(t.TempDir(), "token.json"),
		CalendarID:      "primary",
	}

	_, err := NewGoogleEventCreator(context.Background(), cfg)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
}
