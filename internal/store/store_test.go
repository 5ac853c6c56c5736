package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"user_progress", "users", "llm_request_events"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestProgressGetMissing(t *testing.T) {
	s := openTestStore(t)
	p, err := s.ProgressRepo().Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil progress, got %+v", p)
	}
}

func TestProgressUpsertCreatesWithDefaults(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	p, err := repo.Upsert(ctx, "u1", ProgressPatch{Topic: Some("hashing")})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p.Topic == nil || *p.Topic != "hashing" {
		t.Errorf("topic = %v, want hashing", p.Topic)
	}
	if p.CurrentLevel != nil {
		t.Errorf("current_level = %d, want nil", *p.CurrentLevel)
	}
	if p.DiagnosticAttempts != 0 || p.DiagnosticPassed || p.HintStage != 0 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestProgressUpsertOnlyWritesPresentFields(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	_, err := repo.Upsert(ctx, "u1", ProgressPatch{
		Topic:              Some("recursion"),
		CurrentLevel:       Some(3),
		DiagnosticAttempts: Some(2),
		DiagnosticPassed:   Some(false),
		HintStage:          Some(2),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	p, err := repo.Upsert(ctx, "u1", ProgressPatch{DiagnosticAttempts: Some(3)})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if p.DiagnosticAttempts != 3 {
		t.Errorf("attempts = %d, want 3", p.DiagnosticAttempts)
	}
	if p.Topic == nil || *p.Topic != "recursion" {
		t.Errorf("topic changed: %v", p.Topic)
	}
	if p.CurrentLevel == nil || *p.CurrentLevel != 3 {
		t.Errorf("level changed: %v", p.CurrentLevel)
	}
	if p.HintStage != 2 {
		t.Errorf("hint stage = %d, want 2", p.HintStage)
	}
}

func TestProgressUpsertClearsNullFields(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, "u1", ProgressPatch{Topic: Some("graphs"), CurrentLevel: Some(2)}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	p, err := repo.Upsert(ctx, "u1", ProgressPatch{Topic: Clear[string]()})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if p.Topic != nil {
		t.Errorf("topic = %q, want nil", *p.Topic)
	}
	if p.CurrentLevel == nil || *p.CurrentLevel != 2 {
		t.Errorf("level = %v, want 2", p.CurrentLevel)
	}
}

func TestProgressDelete(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, "u1", ProgressPatch{CurrentLevel: Some(1)}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	p, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p != nil {
		t.Fatal("expected row to be gone")
	}

	// Deleting again is a no-op.
	if err := repo.Delete(ctx, "u1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestUserCreateAndLookup(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()

	u := &User{
		ID:           "id-1",
		Email:        "ada@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.ByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	if got.ID != "id-1" || got.Username != nil || got.IsOnboarded {
		t.Errorf("unexpected user: %+v", got)
	}

	dup := *u
	dup.ID = "id-2"
	if err := repo.Create(ctx, &dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate email: err = %v, want ErrConflict", err)
	}

	if _, err := repo.ByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing id: err = %v, want ErrNotFound", err)
	}
}

func TestUserUpdate(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		err := repo.Create(ctx, &User{ID: id, Email: id + "@example.com", PasswordHash: "h", CreatedAt: time.Now().UTC()})
		if err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	got, err := repo.Update(ctx, "a", UserUpdate{Username: Some("ada"), IsOnboarded: Some(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Username == nil || *got.Username != "ada" || !got.IsOnboarded {
		t.Errorf("unexpected user after update: %+v", got)
	}

	byName, err := repo.ByUsername(ctx, "ada")
	if err != nil {
		t.Fatalf("by username: %v", err)
	}
	if byName.ID != "a" {
		t.Errorf("by username id = %q, want a", byName.ID)
	}

	if _, err := repo.Update(ctx, "b", UserUpdate{Username: Some("ada")}); !errors.Is(err, ErrConflict) {
		t.Fatalf("taken username: err = %v, want ErrConflict", err)
	}
	if _, err := repo.Update(ctx, "zzz", UserUpdate{Username: Some("zed")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user: err = %v, want ErrNotFound", err)
	}
}

func TestLLMEventsAppendQueryAndUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{UserID: "u1", Provider: "mock", Model: "m1", Purpose: "lesson", InputTokens: 10, OutputTokens: 20, LatencyMs: 100, Success: true},
		{UserID: "u1", Provider: "mock", Model: "m1", Purpose: "lesson", InputTokens: 30, OutputTokens: 40, LatencyMs: 300, Success: true},
		{UserID: "u2", Provider: "mock", Model: "m2", Purpose: "quiz-grade", InputTokens: 5, OutputTokens: 5, LatencyMs: 50, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].Purpose != "quiz-grade" {
		t.Errorf("newest first: got purpose %q", all[0].Purpose)
	}

	lessons, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "lesson", Limit: 1})
	if err != nil {
		t.Fatalf("query lessons: %v", err)
	}
	if len(lessons) != 1 || lessons[0].InputTokens != 30 {
		t.Errorf("unexpected lesson events: %+v", lessons)
	}

	e, err := repo.GetLLMEvent(ctx, all[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.ErrorMessage != "boom" || e.Success {
		t.Errorf("unexpected event: %+v", e)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("missing event: got %+v, %v", missing, err)
	}

	usage, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 2 {
		t.Fatalf("got %d usage rows, want 2", len(usage))
	}
	if usage[0].Key != "lesson" || usage[0].Calls != 2 || usage[0].InputTokens != 40 || usage[0].AvgLatencyMs != 200 {
		t.Errorf("unexpected lesson usage: %+v", usage[0])
	}
}
