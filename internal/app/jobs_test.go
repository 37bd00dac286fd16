package app

import (
	"errors"
	"testing"
	"time"

	"github.com/transfa/griffin-service/internal/domain"
)

func TestReportOrphanedPayments_PublishesReminderPerOrphan(t *testing.T) {
	repo := &repoStub{orphans: []domain.PaymentWorkflowRecord{
		{ID: "wf-1", PaymentURL: "/v0/payments/p.1", Stage: domain.StageSubmitFailed, CreatedAt: time.Now().Add(-time.Hour)},
		{ID: "wf-2", PaymentURL: "/v0/payments/p.2", Stage: domain.StageSubmitFailed, CreatedAt: time.Now()},
	}}
	pub := &publisherStub{}
	jobs := NewJobs(repo, pub, "griffin.events", discardLogger())

	jobs.ReportOrphanedPayments()

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(pub.events))
	}
	for i, ev := range pub.events {
		if ev.routingKey != domain.EventPaymentOrphanedReminder || ev.exchange != "griffin.events" {
			t.Fatalf("unexpected event %+v", ev)
		}
		payload, ok := ev.body.(domain.PaymentEvent)
		if !ok || payload.WorkflowID != repo.orphans[i].ID {
			t.Fatalf("unexpected payload %+v", ev.body)
		}
	}
}

func TestReportOrphanedPayments_ListFailureIsLoggedOnly(t *testing.T) {
	repo := &repoStub{orphansErr: errors.New("db down")}
	pub := &publisherStub{}

	NewJobs(repo, pub, "griffin.events", discardLogger()).ReportOrphanedPayments()

	if len(pub.events) != 0 {
		t.Fatalf("expected no events, got %d", len(pub.events))
	}
}

func TestReportOrphanedPayments_PublishFailureContinues(t *testing.T) {
	repo := &repoStub{orphans: []domain.PaymentWorkflowRecord{{ID: "wf-1"}, {ID: "wf-2"}}}
	pub := &publisherStub{err: errors.New("broker down")}

	NewJobs(repo, pub, "griffin.events", discardLogger()).ReportOrphanedPayments()

	if len(pub.events) != 2 {
		t.Fatalf("expected both reminders to be attempted, got %d", len(pub.events))
	}
}

func TestScheduler_RejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(NewJobs(nil, nil, "", discardLogger()), discardLogger(), "not a cron spec")
	if err := s.Start(); err == nil {
		t.Fatal("expected invalid schedule to be rejected")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(NewJobs(nil, nil, "", discardLogger()), discardLogger(), "*/15 * * * *")
	if err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
