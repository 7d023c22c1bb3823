package warnings

import (
	"context"
	"errors"
	"testing"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
)

func reconcileFixture(t *testing.T) (*fakeStore, *fakePlatform, *Pipeline, *fakeReporter, *fakePublisher) {
	t.Helper()

	store := newFakeStore(testGuild("g1"))
	store.hiddenBan = &models.Penalty{Name: "regular ban", Ban: true, Hidden: true}

	platform := newFakePlatform()
	platform.addUser("executor", "some-mod")

	reporter := &fakeReporter{}
	publisher := &fakePublisher{}
	pipeline := NewPipeline(store, platform, &fakeUploader{}, reporter, publisher, "[AutoBan]")

	return store, platform, pipeline, reporter, publisher
}

func countWarnings(s *fakeStore) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.warnings)
}

func TestReconcileExternalBan(t *testing.T) {
	store, platform, pipeline, _, publisher := reconcileFixture(t)

	target := platform.addUser("u1", "alice")
	platform.auditEntry = &AuditLogBan{ExecutorID: "executor", Reason: "raiding"}

	if err := pipeline.ReconcileExternalBan(context.Background(), "g1", target); err != nil {
		t.Fatalf("ReconcileExternalBan returned error: %v", err)
	}

	if countWarnings(store) != 1 {
		t.Fatalf("warning count = %d, want 1", countWarnings(store))
	}

	w, _ := store.WarningByID(context.Background(), 1)
	if w.Notified != models.NotifiedRegularBan {
		t.Errorf("notified = %v, want %v", w.Notified, models.NotifiedRegularBan)
	}
	if w.Penalised != models.PenalisedApplied {
		t.Errorf("penalised = %v, want %v", w.Penalised, models.PenalisedApplied)
	}
	if !w.Silent {
		t.Error("reconciled bans are recorded silently")
	}
	if w.CreatedBy != "executor" {
		t.Errorf("createdBy = %v, want executor", w.CreatedBy)
	}
	if w.Description != "raiding" {
		t.Errorf("description = %v, want raiding", w.Description)
	}

	// The record was published like any other warning
	if len(w.LogMessages) != 1 {
		t.Errorf("log message count = %d, want 1", len(w.LogMessages))
	}
	if len(publisher.published) != 1 {
		t.Errorf("published events = %d, want 1", len(publisher.published))
	}
}

func TestReconcileSkipsOwnBans(t *testing.T) {
	store, platform, pipeline, _, _ := reconcileFixture(t)

	target := platform.addUser("u1", "alice")
	platform.auditEntry = &AuditLogBan{ExecutorID: platform.botID, Reason: "Warning #3"}

	if err := pipeline.ReconcileExternalBan(context.Background(), "g1", target); err != nil {
		t.Fatalf("ReconcileExternalBan returned error: %v", err)
	}

	if countWarnings(store) != 0 {
		t.Error("bans applied by the bot itself must not be reconciled")
	}
}

func TestReconcileSkipsExemptReason(t *testing.T) {
	store, platform, pipeline, _, _ := reconcileFixture(t)

	target := platform.addUser("u1", "alice")
	platform.auditEntry = &AuditLogBan{ExecutorID: "executor", Reason: "[AutoBan] matched raid pattern"}

	if err := pipeline.ReconcileExternalBan(context.Background(), "g1", target); err != nil {
		t.Fatalf("ReconcileExternalBan returned error: %v", err)
	}

	if countWarnings(store) != 0 {
		t.Error("bans with the exempt reason prefix must not be reconciled")
	}
}

func TestReconcileDedupesRedeliveredEvents(t *testing.T) {
	store, platform, pipeline, _, _ := reconcileFixture(t)

	target := platform.addUser("u1", "alice")
	platform.auditEntry = &AuditLogBan{ExecutorID: "executor", Reason: "raiding"}

	if err := pipeline.ReconcileExternalBan(context.Background(), "g1", target); err != nil {
		t.Fatalf("first ReconcileExternalBan returned error: %v", err)
	}
	if err := pipeline.ReconcileExternalBan(context.Background(), "g1", target); err != nil {
		t.Fatalf("second ReconcileExternalBan returned error: %v", err)
	}

	if countWarnings(store) != 1 {
		t.Errorf("warning count = %d, want 1 (redelivery must be deduplicated)", countWarnings(store))
	}
}

func TestReconcileMissingAuditLogEntry(t *testing.T) {
	store, platform, pipeline, reporter, _ := reconcileFixture(t)

	target := platform.addUser("u1", "alice")
	platform.auditEntry = nil

	err := pipeline.ReconcileExternalBan(context.Background(), "g1", target)
	if !errors.Is(err, ErrAuditLogNotFound) {
		t.Fatalf("error = %v, want ErrAuditLogNotFound", err)
	}

	if reporter.count() != 1 {
		t.Errorf("reported errors = %d, want 1", reporter.count())
	}
	if countWarnings(store) != 0 {
		t.Error("no warning may be created without an audit log entry")
	}
}

func TestReconcileCancelledContext(t *testing.T) {
	_, platform, pipeline, _, _ := reconcileFixture(t)

	target := platform.addUser("u1", "alice")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pipeline.ReconcileExternalBan(ctx, "g1", target)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
