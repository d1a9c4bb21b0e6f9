package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/ticketsheet/internal/config"
	"github.com/JonMunkholm/ticketsheet/internal/core"
)

func ticket(key, owner string) core.Record {
	rec := core.Record{core.FieldOwner: core.Text(owner)}
	if key != "" {
		rec[core.FieldTicketNumber] = core.Text(key)
	}
	return rec
}

func ownersByKey(recs []core.Record) map[string]string {
	out := make(map[string]string)
	for _, r := range recs {
		out[r.Key()] = r.Get(core.FieldOwner).String()
	}
	return out
}

// storeContract exercises the RecordStore behaviour every backend shares.
func storeContract(t *testing.T, s core.RecordStore) {
	ctx := context.Background()

	t.Run("empty fetch", func(t *testing.T) {
		recs, err := s.FetchAll(ctx)
		if err != nil {
			t.Fatalf("FetchAll: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("fresh store has %d records", len(recs))
		}
	})

	t.Run("upsert replaces by ticket number", func(t *testing.T) {
		if err := s.UpsertBatch(ctx, []core.Record{ticket("T1", "alice"), ticket("T2", "bob")}); err != nil {
			t.Fatalf("first batch: %v", err)
		}
		if err := s.UpsertBatch(ctx, []core.Record{ticket(" T1 ", "carol"), ticket("T3", "dan")}); err != nil {
			t.Fatalf("second batch: %v", err)
		}

		recs, err := s.FetchAll(ctx)
		if err != nil {
			t.Fatalf("FetchAll: %v", err)
		}
		if len(recs) != 3 {
			t.Fatalf("stored %d records, want 3", len(recs))
		}
		owners := ownersByKey(recs)
		if owners["T1"] != "carol" || owners["T2"] != "bob" || owners["T3"] != "dan" {
			t.Errorf("owners = %v", owners)
		}
	})

	t.Run("blank ticket numbers never collide", func(t *testing.T) {
		before, _ := s.FetchAll(ctx)
		if err := s.UpsertBatch(ctx, []core.Record{ticket("", "x"), ticket("", "y")}); err != nil {
			t.Fatalf("UpsertBatch: %v", err)
		}
		if err := s.UpsertBatch(ctx, []core.Record{ticket("", "z")}); err != nil {
			t.Fatalf("UpsertBatch: %v", err)
		}
		after, _ := s.FetchAll(ctx)
		if got := len(after) - len(before); got != 3 {
			t.Errorf("inserted %d unkeyed records, want 3", got)
		}
	})

	t.Run("all fields round trip", func(t *testing.T) {
		rec := core.Record{}
		for _, fi := range core.Fields() {
			rec[fi.Field] = core.Text("v-" + string(fi.Field))
		}
		rec[core.FieldTicketNumber] = core.Text("FULL-1")
		rec[core.FieldAdded] = core.Text("1/1/2021  12:00:00 PM")

		if err := s.UpsertBatch(ctx, []core.Record{rec}); err != nil {
			t.Fatalf("UpsertBatch: %v", err)
		}
		recs, _ := s.FetchAll(ctx)
		var got core.Record
		for _, r := range recs {
			if r.Key() == "FULL-1" {
				got = r
			}
		}
		if got == nil {
			t.Fatal("record FULL-1 missing")
		}
		for f, want := range rec {
			if got.Get(f).String() != want.String() {
				t.Errorf("%s = %q, want %q", f, got.Get(f).String(), want.String())
			}
		}
	})

	t.Run("chunked save through core", func(t *testing.T) {
		recs := make([]core.Record, 1200)
		for i := range recs {
			recs[i] = ticket(fmt.Sprintf("BULK-%04d", i), "bulk")
		}
		res, err := core.SaveRecords(ctx, s, recs)
		if err != nil {
			t.Fatalf("SaveRecords: %v", err)
		}
		if res.Chunks != 2 || res.Saved != 1200 {
			t.Errorf("SaveRecords = %+v", res)
		}
		page := core.Query(mustFetch(t, s), core.FilterSpec{Owner: "bulk"}, core.DefaultSort, 1)
		if page.TotalItems != 1200 || page.TotalPages != 60 {
			t.Errorf("bulk page = %d items / %d pages", page.TotalItems, page.TotalPages)
		}
	})
}

func mustFetch(t *testing.T, s core.RecordStore) []core.Record {
	t.Helper()
	recs, err := s.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	return recs
}

func TestMemory(t *testing.T) {
	storeContract(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "tickets.db")
	s, err := OpenSQLite(context.Background(), path, "")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	storeContract(t, s)
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tickets.db")

	s, err := OpenSQLite(ctx, path, "ticket_rows")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertBatch(ctx, []core.Record{ticket("T1", "alice")}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(ctx, path, "ticket_rows")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if owners := ownersByKey(mustFetch(t, s)); owners["T1"] != "alice" {
		t.Errorf("owners after reopen = %v", owners)
	}
}

func TestMemory_FailAfter(t *testing.T) {
	m := NewMemory()
	m.FailAfter = 1

	recs := make([]core.Record, 1500)
	for i := range recs {
		recs[i] = ticket(fmt.Sprintf("T%d", i), "a")
	}
	_, err := core.SaveRecords(context.Background(), m, recs)

	var pe *core.PersistenceError
	if !errors.As(err, &pe) || pe.Committed != 1000 {
		t.Fatalf("err = %v, want PersistenceError with 1000 committed", err)
	}
	if !errors.Is(err, ErrInjected) {
		t.Error("error should wrap ErrInjected")
	}
	if m.Len() != 1000 {
		t.Errorf("Len = %d, want 1000", m.Len())
	}
}

func TestMemory_FetchReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.UpsertBatch(ctx, []core.Record{ticket("T1", "alice")})

	recs, _ := m.FetchAll(ctx)
	recs[0][core.FieldOwner] = core.Text("mallory")

	if owners := ownersByKey(mustFetch(t, m)); owners["T1"] != "alice" {
		t.Errorf("stored record was mutated through FetchAll: %v", owners)
	}
}

func TestValidateTable(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", DefaultTable, false},
		{"tickets", "tickets", false},
		{"_staging2", "_staging2", false},
		{"tickets; DROP TABLE x", "", true},
		{"2fast", "", true},
		{strings.Repeat("a", 64), "", true},
	}
	for _, tt := range tests {
		got, err := validateTable(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("validateTable(%q) = (%q, %v)", tt.in, got, err)
		}
	}
}

func TestUpsertSQL(t *testing.T) {
	q := upsertSQL("tickets", func(n int) string { return fmt.Sprintf("$%d", n) })

	for _, want := range []string{
		"INSERT INTO tickets (priority, ",
		"VALUES ($1, $2,",
		"$15)",
		"ON CONFLICT (ticket_number) DO UPDATE SET",
		"owner = excluded.owner",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("upsert SQL missing %q:\n%s", want, q)
		}
	}
	if strings.Contains(q, "ticket_number = excluded.ticket_number") {
		t.Error("conflict key must not be updated")
	}
}

func TestRecordArgs(t *testing.T) {
	args := recordArgs(core.Record{
		core.FieldTicketNumber: core.Text("  T9 "),
		core.FieldOwner:        core.Text("   "),
		core.FieldRequestID:    core.Number(42),
	})
	byCol := map[string]any{}
	for i, c := range columns() {
		byCol[c] = args[i]
	}
	if byCol["ticket_number"] != "T9" {
		t.Errorf("ticket_number = %v, want trimmed T9", byCol["ticket_number"])
	}
	if byCol["owner"] != nil {
		t.Errorf("blank owner = %v, want NULL", byCol["owner"])
	}
	if byCol["request_id"] != "42" {
		t.Errorf("request_id = %v, want \"42\"", byCol["request_id"])
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := Open(ctx, config.StoreConfig{Driver: "MEMORY"})
	if err != nil {
		t.Fatalf("Open(memory): %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("memory driver returned %T", s)
	}
	closeFn()

	path := filepath.Join(t.TempDir(), "t.db")
	s, closeFn, err = Open(ctx, config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: path, Table: "tickets"})
	if err != nil {
		t.Fatalf("Open(sqlite): %v", err)
	}
	if _, ok := s.(*SQLite); !ok {
		t.Errorf("sqlite driver returned %T", s)
	}
	closeFn()

	if _, _, err := Open(ctx, config.StoreConfig{Driver: "oracle"}); err == nil {
		t.Error("unknown driver should fail")
	}
	if _, _, err := Open(ctx, config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: path, Table: "bad name"}); err == nil {
		t.Error("invalid table should fail")
	}
}
