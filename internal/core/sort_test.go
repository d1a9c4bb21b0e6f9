package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSortRows(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		dir  Direction
		want []string
	}{
		{"numbers as text sort numerically", []string{"10", "9", "abc"}, Asc, []string{"9", "10", "abc"}},
		{"descending", []string{"10", "9", "abc"}, Desc, []string{"abc", "10", "9"}},
		{"dates chronologically", []string{"1/2/2021", "12/31/2020", "1/1/2021"}, Asc, []string{"12/31/2020", "1/1/2021", "1/2/2021"}},
		{"text ignores case", []string{"beta", "Alpha", "gamma"}, Asc, []string{"Alpha", "beta", "gamma"}},
		{"empty", nil, Asc, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]Row, len(tt.in))
			for i, v := range tt.in {
				rows[i] = Row{Text(v)}
			}
			got := keysOf(SortRows(rows, 0, tt.dir), 0)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SortRows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortRows_StableTies(t *testing.T) {
	rows := []Row{
		{Text("b"), Text("1")},
		{Text("a"), Text("2")},
		{Text("B"), Text("3")},
		{Text("a"), Text("4")},
		{Text("b"), Text("5")},
	}

	asc := keysOf(SortRows(rows, 0, Asc), 1)
	if diff := cmp.Diff([]string{"2", "4", "1", "3", "5"}, asc); diff != "" {
		t.Errorf("asc ties mismatch (-want +got):\n%s", diff)
	}

	// Descending keeps ties in input order too.
	desc := keysOf(SortRows(rows, 0, Desc), 1)
	if diff := cmp.Diff([]string{"1", "3", "5", "2", "4"}, desc); diff != "" {
		t.Errorf("desc ties mismatch (-want +got):\n%s", diff)
	}

	if rows[0].At(1).Text != "1" {
		t.Error("SortRows reordered its input")
	}
}

func TestSortSheet(t *testing.T) {
	sheet := RawSheet{Name: "Tickets", Rows: []Row{
		TextRow("Ticket Number", "Added"),
		{Text("10"), Number(44198)},
		{Text("9"), Empty()},
		{Text("abc"), Text("2021-01-01T12:00:00Z")},
	}}

	res, err := SortSheet(sheet, 0, Asc)
	if err != nil {
		t.Fatalf("SortSheet: %v", err)
	}
	if res.Label != "Ticket Number" || res.Dir != Asc {
		t.Errorf("result meta = (%q, %s)", res.Label, res.Dir)
	}
	if diff := cmp.Diff([]string{"Ticket Number", "9", "10", "abc"}, keysOf(res.Sheet.Rows, 0)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Added", "", "1/2/2021  12:00:00 AM", "1/1/2021  12:00:00 PM"}, keysOf(res.Sheet.Rows, 1)); diff != "" {
		t.Errorf("date column mismatch (-want +got):\n%s", diff)
	}
}

func TestSortSheet_UnknownDirectionIsAscending(t *testing.T) {
	sheet := RawSheet{Rows: []Row{TextRow("N"), TextRow("2"), TextRow("1")}}
	res, err := SortSheet(sheet, 0, Direction("sideways"))
	if err != nil {
		t.Fatalf("SortSheet: %v", err)
	}
	if res.Dir != Asc || res.Sheet.Rows[1].At(0).Text != "1" {
		t.Errorf("got dir %s, first %q", res.Dir, res.Sheet.Rows[1].At(0).Text)
	}
}

func TestSortSheet_ColumnOutOfRange(t *testing.T) {
	sheet := RawSheet{Name: "S", Rows: []Row{TextRow("A", "B"), TextRow("1", "2")}}

	for _, col := range []int{-1, 2, 10} {
		_, err := SortSheet(sheet, col, Asc)
		var mc *MissingColumnError
		if !errors.As(err, &mc) {
			t.Errorf("SortSheet(col %d) err = %v, want MissingColumnError", col, err)
		}
	}
}

func TestSortSheetByField(t *testing.T) {
	sheet := RawSheet{Name: "S", Rows: []Row{
		TextRow("Notes", "Owner"),
		TextRow("x", "zed"),
		TextRow("y", "amy"),
	}}

	res, err := SortSheetByField(sheet, FieldOwner, Desc)
	if err != nil {
		t.Fatalf("SortSheetByField: %v", err)
	}
	if res.Column != 1 || res.Sheet.Rows[1].At(1).Text != "zed" {
		t.Errorf("got column %d, first %q", res.Column, res.Sheet.Rows[1].At(1).Text)
	}

	if _, err := SortSheetByField(sheet, FieldAirline, Asc); err == nil {
		t.Error("SortSheetByField on missing field should fail")
	}
}

func TestSortRecords(t *testing.T) {
	records := []Record{
		{FieldTicketNumber: Text("T3"), FieldOwner: Text("b")},
		{FieldTicketNumber: Text("T1"), FieldOwner: Text("a")},
		{FieldTicketNumber: Text("T2")},
	}
	got := SortRecords(records, FieldOwner, Asc)
	want := []string{"T2", "T1", "T3"} // empty owner sorts first
	for i, rec := range got {
		if rec.Key() != want[i] {
			t.Errorf("position %d = %s, want %s", i, rec.Key(), want[i])
		}
	}
}
