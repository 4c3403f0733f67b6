package accident

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewRecordSortsTrains(t *testing.T) {
	r := NewRecord(KindStationOvercrowding, "e", 1, []string{"b", "a", "b"}, "")
	if diff := cmp.Diff([]string{"a", "b"}, r.Trains); diff != "" {
		t.Errorf("Trains mismatch (-want +got):\n%s", diff)
	}
}

func TestLedgerFirstEmpty(t *testing.T) {
	l := NewLedger()
	if _, ok := l.First(); ok {
		t.Fatal("empty ledger should have no first accident")
	}
	if l.Len() != 0 {
		t.Fatalf("Len = %d, want 0", l.Len())
	}
}

func TestLedgerOrdering(t *testing.T) {
	l := NewLedger()
	late := NewRecord(KindSectionCollision, "de", 2.5, []string{"1", "2"}, "")
	early := NewRecord(KindStationOvercrowding, "e", 0.5, []string{"3", "4"}, "")
	sameTime := NewRecord(KindSectionCollision, "ef", 2.5, []string{"5", "6"}, "")
	l.Add(late)
	l.Add(early)
	l.Add(sameTime)

	if l.Len() != 3 {
		t.Fatalf("Len = %d, want 3", l.Len())
	}

	want := []Entry{
		{Time: 0.5, Records: []Record{early}},
		{Time: 2.5, Records: []Record{late, sameTime}},
	}
	if diff := cmp.Diff(want, l.Entries()); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}

	first, ok := l.First()
	if !ok {
		t.Fatal("expected a first accident")
	}
	if diff := cmp.Diff(want[0], first); diff != "" {
		t.Errorf("First mismatch (-want +got):\n%s", diff)
	}
}
