package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/botlink/botlink/internal/model"
)

// backends returns a fresh instance of every backend for contract tests.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	memory := NewMemory()
	t.Cleanup(func() { memory.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"memory": memory,
	}
}

func testMapping(code string) *model.CodeMapping {
	return &model.CodeMapping{
		Code: code,
		Attribution: model.ClickAttribution{
			Slug:      "promo",
			Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			UTM:       model.UTMParams{Source: "linkedin", Campaign: "launch"},
			Extra:     map[string]string{"ref": "abc"},
			IPHash:    "deadbeefdeadbeef",
			UserAgent: "Mozilla/5.0",
			Device:    model.DeviceInfo{Type: "mobile", OS: "Android", Browser: "Chrome", LikelyApp: true},
			RequestID: "req-1",
		},
		BotUsername: "SalesBot",
		CreatedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testEntry(id, slug string, ts time.Time) *model.ClickLogEntry {
	return &model.ClickLogEntry{
		ID:        id,
		RequestID: "req-" + id,
		Slug:      slug,
		Timestamp: ts,
		IPHash:    "cafebabecafebabe",
		UserAgent: "Mozilla/5.0",
		Target:    "https://t.me/SalesBot?start=x",
		Code:      "x",
		Params:    map[string]string{"utm_source": "linkedin"},
	}
}

func TestStore_StoreAndGetCode(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := testMapping("code-roundtrip")

			if err := s.StoreCode(ctx, want); err != nil {
				t.Fatalf("StoreCode() error = %v", err)
			}

			got, err := s.GetCode(ctx, want.Code)
			if err != nil {
				t.Fatalf("GetCode() error = %v", err)
			}

			if got.BotUsername != want.BotUsername {
				t.Errorf("BotUsername = %q, want %q", got.BotUsername, want.BotUsername)
			}
			if got.Resolved {
				t.Error("Resolved = true, want false")
			}
			if !got.CreatedAt.Equal(want.CreatedAt) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
			}
			if got.Attribution.Slug != "promo" || got.Attribution.UTM.Source != "linkedin" {
				t.Errorf("Attribution = %+v, want slug=promo utm_source=linkedin", got.Attribution)
			}
			if got.Attribution.Extra["ref"] != "abc" {
				t.Errorf("Attribution.Extra = %v, want ref=abc", got.Attribution.Extra)
			}
			if got.Attribution.Device != want.Attribution.Device {
				t.Errorf("Attribution.Device = %+v, want %+v", got.Attribution.Device, want.Attribution.Device)
			}
		})
	}
}

func TestStore_GetCodeNotFound(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			if _, err := s.GetCode(context.Background(), "never-issued"); err != ErrNotFound {
				t.Errorf("GetCode() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_ReadsAreDeepCopies(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := testMapping("code-deepcopy")
			if err := s.StoreCode(ctx, m); err != nil {
				t.Fatalf("StoreCode() error = %v", err)
			}

			// Mutating the value passed in must not affect stored state.
			m.Attribution.Extra["ref"] = "mutated-input"

			first, err := s.GetCode(ctx, "code-deepcopy")
			if err != nil {
				t.Fatalf("GetCode() error = %v", err)
			}
			// Mutating a returned value must not affect stored state either.
			first.BotUsername = "Evil"
			first.Attribution.Extra["ref"] = "mutated-output"

			second, err := s.GetCode(ctx, "code-deepcopy")
			if err != nil {
				t.Fatalf("GetCode() error = %v", err)
			}
			if second.BotUsername != "SalesBot" {
				t.Errorf("BotUsername = %q, stored state was mutated through a reference", second.BotUsername)
			}
			if second.Attribution.Extra["ref"] != "abc" {
				t.Errorf("Extra[ref] = %q, stored state was mutated through a reference", second.Attribution.Extra["ref"])
			}
		})
	}
}

func TestStore_MarkResolvedIdempotent(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.StoreCode(ctx, testMapping("code-resolve")); err != nil {
				t.Fatalf("StoreCode() error = %v", err)
			}

			first := time.Date(2026, 8, 1, 13, 0, 0, 0, time.UTC)
			if err := s.MarkResolved(ctx, "code-resolve", first); err != nil {
				t.Fatalf("MarkResolved() error = %v", err)
			}

			// Second call with a later timestamp must not move resolvedAt.
			if err := s.MarkResolved(ctx, "code-resolve", first.Add(time.Hour)); err != nil {
				t.Fatalf("MarkResolved() second call error = %v", err)
			}

			got, err := s.GetCode(ctx, "code-resolve")
			if err != nil {
				t.Fatalf("GetCode() error = %v", err)
			}
			if !got.Resolved {
				t.Error("Resolved = false, want true")
			}
			if got.ResolvedAt == nil || !got.ResolvedAt.Equal(first) {
				t.Errorf("ResolvedAt = %v, want %v", got.ResolvedAt, first)
			}
			if got.ResolvedAt.Before(got.CreatedAt) {
				t.Errorf("ResolvedAt %v is before CreatedAt %v", got.ResolvedAt, got.CreatedAt)
			}
		})
	}
}

func TestStore_MarkResolvedMissing(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			err := s.MarkResolved(context.Background(), "missing", time.Now())
			if err != ErrNotFound {
				t.Errorf("MarkResolved() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_DeleteCode(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.StoreCode(ctx, testMapping("code-delete")); err != nil {
				t.Fatalf("StoreCode() error = %v", err)
			}
			if err := s.DeleteCode(ctx, "code-delete"); err != nil {
				t.Fatalf("DeleteCode() error = %v", err)
			}
			if _, err := s.GetCode(ctx, "code-delete"); err != ErrNotFound {
				t.Errorf("GetCode() after delete error = %v, want ErrNotFound", err)
			}
			// Deleting again is a no-op, not an error.
			if err := s.DeleteCode(ctx, "code-delete"); err != nil {
				t.Errorf("DeleteCode() repeat error = %v", err)
			}
		})
	}
}

func TestStore_ClickLogsMostRecentFirst(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

			for i := 0; i < 5; i++ {
				// IDs ascend with timestamps so ordering ties break consistently.
				e := testEntry(fmt.Sprintf("01ARZ3NDEKTSV4RRFFQ69G5FA%d", i), "promo", base.Add(time.Duration(i)*time.Minute))
				if err := s.LogClick(ctx, e); err != nil {
					t.Fatalf("LogClick() error = %v", err)
				}
			}
			if err := s.LogClick(ctx, testEntry("01ARZ3NDEKTSV4RRFFQ69G5FZ9", "other", base)); err != nil {
				t.Fatalf("LogClick() error = %v", err)
			}

			got, err := s.GetClickLogs(ctx, "promo", 3)
			if err != nil {
				t.Fatalf("GetClickLogs() error = %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("GetClickLogs() returned %d entries, want 3", len(got))
			}
			for i := 1; i < len(got); i++ {
				if got[i].Timestamp.After(got[i-1].Timestamp) {
					t.Errorf("entries not most-recent-first: %v before %v", got[i-1].Timestamp, got[i].Timestamp)
				}
			}
			for _, e := range got {
				if e.Slug != "promo" {
					t.Errorf("entry slug = %q, want promo", e.Slug)
				}
			}
		})
	}
}

func TestStore_ClickLogsSubsecondOrdering(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

			// Fractional parts with different digit counts: a naive
			// variable-width text encoding would sort .1 after .12.
			older := testEntry("01ARZ3NDEKTSV4RRFFQ69G5FB1", "promo", base.Add(100*time.Millisecond))
			newer := testEntry("01ARZ3NDEKTSV4RRFFQ69G5FB2", "promo", base.Add(120*time.Millisecond))
			for _, e := range []*model.ClickLogEntry{older, newer} {
				if err := s.LogClick(ctx, e); err != nil {
					t.Fatalf("LogClick() error = %v", err)
				}
			}

			got, err := s.GetClickLogs(ctx, "promo", 10)
			if err != nil {
				t.Fatalf("GetClickLogs() error = %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("GetClickLogs() returned %d entries, want 2", len(got))
			}
			if got[0].ID != newer.ID {
				t.Errorf("first entry = %q (ts %v), want %q (ts %v)",
					got[0].ID, got[0].Timestamp, newer.ID, newer.Timestamp)
			}
			if !got[0].Timestamp.Equal(newer.Timestamp) {
				t.Errorf("first entry ts = %v, want %v", got[0].Timestamp, newer.Timestamp)
			}
		})
	}
}

func TestStore_ClickLogsNonPositiveLimit(t *testing.T) {
	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
			if err := s.LogClick(ctx, testEntry("01ARZ3NDEKTSV4RRFFQ69G5FC1", "promo", base)); err != nil {
				t.Fatalf("LogClick() error = %v", err)
			}

			for _, limit := range []int{0, -1} {
				got, err := s.GetClickLogs(ctx, "promo", limit)
				if err != nil {
					t.Fatalf("GetClickLogs(limit=%d) error = %v", limit, err)
				}
				if len(got) != 0 {
					t.Errorf("GetClickLogs(limit=%d) returned %d entries, want none", limit, len(got))
				}
			}
		})
	}
}

func TestMemoryStore_ClickLogEviction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryWithCap(10)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 15; i++ {
		e := testEntry(fmt.Sprintf("id-%02d", i), "promo", base.Add(time.Duration(i)*time.Second))
		if err := s.LogClick(ctx, e); err != nil {
			t.Fatalf("LogClick() error = %v", err)
		}
	}

	got, err := s.GetClickLogs(ctx, "promo", 100)
	if err != nil {
		t.Fatalf("GetClickLogs() error = %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("GetClickLogs() returned %d entries, want capacity 10", len(got))
	}
	// Oldest five were evicted; newest entry comes back first.
	if got[0].ID != "id-14" {
		t.Errorf("newest entry ID = %q, want id-14", got[0].ID)
	}
	if got[len(got)-1].ID != "id-05" {
		t.Errorf("oldest surviving entry ID = %q, want id-05", got[len(got)-1].ID)
	}
}
