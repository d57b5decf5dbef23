package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

const today = "2026-10-15"

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func signIn(t *testing.T, s *Store, email string) string {
	t.Helper()
	id, err := s.Authenticate(context.Background(), ports.Credentials{Email: email, Token: "secret"})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	return id
}

func sampleDoc() *domain.FocusData {
	rec, _ := domain.ParseRecurrence("months:1:31")
	d := domain.NewFocusData("2026-10-12")
	d.AddGoal(domain.WeeklyGoal{ID: "g1", Title: "Ship"})
	d.AddHabit(domain.DailyHabit{ID: "h1", Title: "Walk", CompletedToday: true})
	d.AddHabit(domain.DailyHabit{ID: "h2", Title: "Read"})
	d.AppendTask(domain.Task{ID: "t1", Title: "Now", Section: domain.SectionImmediate, GoalID: "g1", DoDate: "2026-10-15", DoTime: "09:00"})
	d.AppendTask(domain.Task{ID: "t2", Title: "Later", Section: domain.SectionThisWeek, Recurrence: rec, URL: "https://example.com"})
	d.AppendTask(domain.Task{ID: "t3", Title: "Imported", Section: domain.SectionUnscheduled, SourceFile: "Daily.md", SourceLine: 3})
	d.AppendTask(domain.Task{ID: "t4", Title: "Done", Section: domain.SectionThisWeek})
	d.Archive("t4", "2026-09-30")
	return d
}

func TestAuthenticate(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "remote.db"))
	ctx := context.Background()

	first := signIn(t, s, "me@example.com")
	second := signIn(t, s, "me@example.com")
	if first == "" || first != second {
		t.Errorf("user ids = %q, %q", first, second)
	}

	_, err := s.Authenticate(ctx, ports.Credentials{Email: "me@example.com", Token: "wrong"})
	if !errors.Is(err, ports.ErrAuthFailed) {
		t.Errorf("wrong token: %v", err)
	}
	if _, err := s.Authenticate(ctx, ports.Credentials{}); !errors.Is(err, ports.ErrAuthFailed) {
		t.Errorf("empty credentials: %v", err)
	}
}

func TestPullBeforeSignIn(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "remote.db"))

	if _, err := s.Pull(context.Background(), today); !errors.Is(err, ports.ErrAuthFailed) {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestPushPullRoundTrip(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "remote.db"))
	signIn(t, s, "me@example.com")
	ctx := context.Background()
	local := domain.ToSnapshot(sampleDoc(), today)

	if err := s.Push(ctx, local, domain.NewSnapshotIDs(), today); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	snap, err := s.Pull(ctx, today)
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}

	got := domain.FromSnapshot(snap, today)
	want := domain.FromSnapshot(local, today)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, want)
	}

	t.Run("archived month survives", func(t *testing.T) {
		if len(got.CompletedTasks["2026-09"]) != 1 {
			t.Errorf("archive = %+v", got.CompletedTasks)
		}
		if !got.FindHabit("h1").CompletedToday || got.FindHabit("h2").CompletedToday {
			t.Errorf("habits = %+v", got.Habits)
		}
	})

	t.Run("completions belong to their day", func(t *testing.T) {
		tomorrow, err := s.Pull(ctx, "2026-10-16")
		if err != nil {
			t.Fatalf("Pull failed: %v", err)
		}
		if len(tomorrow.Completions) != 0 {
			t.Errorf("completions = %+v", tomorrow.Completions)
		}
	})
}

func TestPushDeletesOnlyGivenIDs(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "remote.db"))
	signIn(t, s, "me@example.com")
	ctx := context.Background()

	if err := s.Push(ctx, domain.ToSnapshot(sampleDoc(), today), domain.NewSnapshotIDs(), today); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	d := sampleDoc()
	d.RemoveTask("t1")
	d.RemoveTask("t2")
	deletes := domain.NewSnapshotIDs()
	deletes.Tasks.Add("t1")
	if err := s.Push(ctx, domain.ToSnapshot(d, today), deletes, today); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	snap, _ := s.Pull(ctx, today)
	ids := snap.IDs()
	if ids.Tasks.Has("t1") {
		t.Error("t1 should be deleted")
	}
	if !ids.Tasks.Has("t2") {
		t.Error("t2 was not in the delete set and must survive")
	}
}

func TestPushConflictingOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remote.db")
	alice := openTestStore(t, path)
	bob := openTestStore(t, path)
	signIn(t, alice, "alice@example.com")
	signIn(t, bob, "bob@example.com")
	ctx := context.Background()

	snap := domain.RemoteSnapshot{Tasks: []domain.RemoteTask{{ID: "shared", Title: "Alice's", Section: domain.SectionThisWeek}}}
	if err := alice.Push(ctx, snap, domain.NewSnapshotIDs(), today); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	snap.Tasks[0].Title = "Bob's"
	err := bob.Push(ctx, snap, domain.NewSnapshotIDs(), today)
	if !errors.Is(err, ports.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}

	got, _ := alice.Pull(ctx, today)
	if len(got.Tasks) != 1 || got.Tasks[0].Title != "Alice's" {
		t.Errorf("alice's task = %+v", got.Tasks)
	}
}

func TestSubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remote.db")
	laptop := openTestStore(t, path)
	phone := openTestStore(t, path)
	signIn(t, laptop, "me@example.com")
	signIn(t, phone, "me@example.com")
	laptop.PollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := laptop.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// the subscriber's own pushes are not echoed
	if err := laptop.Push(ctx, domain.RemoteSnapshot{}, domain.NewSnapshotIDs(), today); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	select {
	case <-changes:
		t.Fatal("own push was signalled")
	case <-time.After(50 * time.Millisecond):
	}

	if err := phone.Push(ctx, domain.RemoteSnapshot{}, domain.NewSnapshotIDs(), today); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no signal for another client's push")
	}

	cancel()
	for range changes {
	}
}
