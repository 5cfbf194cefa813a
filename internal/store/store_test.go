package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st, path
}

func TestMarkNew(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	keys := []string{
		"https://testsite.com/item/1",
		"https://testsite.com/item/2",
		"https://testsite.com/item/3",
	}

	fresh, err := st.MarkNew(ctx, "yad2", keys)
	if err != nil {
		t.Fatalf("mark new: %v", err)
	}
	if len(fresh) != 3 {
		t.Fatalf("first run returned %d fresh keys, want 3", len(fresh))
	}
	for i, key := range keys {
		if fresh[i] != key {
			t.Fatalf("fresh[%d] = %s, want input order preserved", i, fresh[i])
		}
	}

	fresh, err = st.MarkNew(ctx, "yad2", keys)
	if err != nil {
		t.Fatalf("mark new again: %v", err)
	}
	if len(fresh) != 0 {
		t.Fatalf("second run returned %d fresh keys, want 0", len(fresh))
	}
}

func TestMarkNewPartialOverlap(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	if _, err := st.MarkNew(ctx, "yad2", []string{"a", "b"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	fresh, err := st.MarkNew(ctx, "yad2", []string{"b", "c", "a", "d"})
	if err != nil {
		t.Fatalf("mark new: %v", err)
	}
	if len(fresh) != 2 || fresh[0] != "c" || fresh[1] != "d" {
		t.Fatalf("fresh = %v, want [c d]", fresh)
	}
}

func TestMarkNewScopedBySource(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	if _, err := st.MarkNew(ctx, "yad2", []string{"https://testsite.com/item/1"}); err != nil {
		t.Fatalf("mark yad2: %v", err)
	}

	// The same key under a different source is a distinct observation.
	fresh, err := st.MarkNew(ctx, "homeless", []string{"https://testsite.com/item/1"})
	if err != nil {
		t.Fatalf("mark homeless: %v", err)
	}
	if len(fresh) != 1 {
		t.Fatalf("fresh = %v, want the key to be new for the second source", fresh)
	}
}

func TestMarkNewSkipsBlankKeys(t *testing.T) {
	st, _ := openTestStore(t)

	fresh, err := st.MarkNew(context.Background(), "yad2", []string{"", "  ", "real"})
	if err != nil {
		t.Fatalf("mark new: %v", err)
	}
	if len(fresh) != 1 || fresh[0] != "real" {
		t.Fatalf("fresh = %v, want [real]", fresh)
	}
}

func TestMarkNewValidation(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	if _, err := st.MarkNew(ctx, "", []string{"a"}); err == nil {
		t.Fatal("expected error for empty source")
	}
	fresh, err := st.MarkNew(ctx, "yad2", nil)
	if err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if len(fresh) != 0 {
		t.Fatalf("fresh = %v, want empty", fresh)
	}

	var nilStore *Store
	if _, err := nilStore.MarkNew(ctx, "yad2", []string{"a"}); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	st, path := openTestStore(t)
	ctx := context.Background()

	if _, err := st.MarkNew(ctx, "yad2", []string{"x"}); err != nil {
		t.Fatalf("mark new: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	fresh, err := reopened.MarkNew(ctx, "yad2", []string{"x", "y"})
	if err != nil {
		t.Fatalf("mark new after reopen: %v", err)
	}
	if len(fresh) != 1 || fresh[0] != "y" {
		t.Fatalf("fresh = %v, want [y]", fresh)
	}
}

func TestCountBySource(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	counts, err := st.CountBySource(ctx)
	if err != nil {
		t.Fatalf("count empty: %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("counts = %v, want empty", counts)
	}

	before := time.Now().Add(-time.Second)
	if _, err := st.MarkNew(ctx, "yad2", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("mark yad2: %v", err)
	}
	if _, err := st.MarkNew(ctx, "homeless", []string{"a"}); err != nil {
		t.Fatalf("mark homeless: %v", err)
	}

	counts, err = st.CountBySource(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("got %d sources, want 2", len(counts))
	}
	// Ordered by source name.
	if counts[0].Source != "homeless" || counts[0].Total != 1 {
		t.Fatalf("counts[0] = %+v", counts[0])
	}
	if counts[1].Source != "yad2" || counts[1].Total != 3 {
		t.Fatalf("counts[1] = %+v", counts[1])
	}
	if counts[1].LastSeen.Before(before) {
		t.Fatalf("last seen %v predates the insert", counts[1].LastSeen)
	}
}

func TestSchemaVersionRecorded(t *testing.T) {
	st, _ := openTestStore(t)

	var version string
	err := st.db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&version)
	if err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != "1" {
		t.Fatalf("schema_version = %s, want 1", version)
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	st, path := openTestStore(t)

	_, err := st.db.Exec("UPDATE metadata SET value = '99' WHERE key = 'schema_version'")
	if err != nil {
		t.Fatalf("bump schema version: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Fatal("expected error opening database with a newer schema")
	}
}

func TestTimeRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 30, 0, 123456789, time.UTC)
	got, err := parseTime(formatTime(now))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(now) {
		t.Fatalf("round trip = %v, want %v", got, now)
	}
}
