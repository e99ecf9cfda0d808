package diag

import (
	"testing"

	"scriptc/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(3)
	r := BagReporter{Bag: b}
	ReportError(r, SemaTypeMismatch, source.Span{File: 1, Start: 10, End: 12}, "late").Emit()
	ReportWarning(r, SemaUnresolvedName, source.Span{File: 1, Start: 2, End: 4}, "early").Emit()
	ReportError(r, LexUnknownChar, source.Span{File: 0, Start: 50, End: 51}, "other file").Emit()
	if b.Add(NewError(LowInternal, source.Span{}, "dropped")) {
		t.Fatalf("expected bag to reject diagnostic past limit")
	}
	b.Sort()
	got := b.Items()
	if got[0].Message != "other file" || got[1].Message != "early" || got[2].Message != "late" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors")
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(10)
	sp := source.Span{File: 2, Start: 1, End: 3}
	b.Add(NewError(SemaUnresolvedName, sp, "x"))
	b.Add(NewError(SemaUnresolvedName, sp, "x again"))
	b.Add(NewError(SemaTypeMismatch, sp, "y"))
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", b.Len())
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LexBadNumber:     "LEX1004",
		SynExpectType:    "SYN2005",
		SemaArgCount:     "SEM3006",
		LowRecursiveType: "LOW4002",
		IOLoadFileError:  "PRJ5001",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Fatalf("code %d: want %s, got %s", code, want, got)
		}
	}
}
