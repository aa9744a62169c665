package audit

import (
	"context"
	"testing"
	"time"
)

func TestService_AppendRejectsUnknownAction(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{Action: "made_up"}); err == nil {
		t.Fatalf("expected error for action outside the closed enum")
	}
	if err := svc.Append(context.Background(), Event{}); err == nil {
		t.Fatalf("expected error for empty action")
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.RecordDenied(context.Background(), "u1", "physician", "1.2.3.4", "role not permitted"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	if evs[0].Action != ActionAccessDenied {
		t.Fatalf("expected access_denied, got %s", evs[0].Action)
	}
	if evs[0].IPAddress != "1.2.3.4" {
		t.Fatalf("expected ip captured")
	}
	if evs[0].ID == "" || evs[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp assigned")
	}
}

func TestService_ListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	base := time.Unix(1700000000, 0).UTC()
	for i := 0; i < 3; i++ {
		e := Event{Action: ActionLogin, ActorUserID: "u", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := svc.Append(context.Background(), e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := svc.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("events not newest first")
		}
	}
}
