package source

import "testing"

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("main.ts", []byte("const a = 1;\nconst b = 2;\n"))

	start, end := fs.Resolve(Span{File: id, Start: 0, End: 5})
	if start.Line != 1 || start.Col != 1 || end.Col != 6 {
		t.Fatalf("unexpected first-line position: %+v %+v", start, end)
	}
	start, _ = fs.Resolve(Span{File: id, Start: 13, End: 18})
	if start.Line != 2 || start.Col != 1 {
		t.Fatalf("expected 2:1, got %d:%d", start.Line, start.Col)
	}
	// the newline itself still belongs to line 1
	start, _ = fs.Resolve(Span{File: id, Start: 12, End: 13})
	if start.Line != 1 || start.Col != 13 {
		t.Fatalf("expected 1:13, got %d:%d", start.Line, start.Col)
	}
	// end of file after the trailing newline
	start, _ = fs.Resolve(Span{File: id, Start: 26, End: 26})
	if start.Line != 3 || start.Col != 1 {
		t.Fatalf("expected 3:1, got %d:%d", start.Line, start.Col)
	}
}

func TestResolveUnknownFile(t *testing.T) {
	start, end := NewFileSet().Resolve(Span{File: 4, Start: 10, End: 12})
	if start != (LineCol{Line: 1, Col: 1}) || end != start {
		t.Fatalf("got %+v %+v", start, end)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.ts", []byte("first\nsecond\nthird"))
	f := fs.Get(id)
	if got := f.GetLine(2); got != "second" {
		t.Fatalf("line 2: got %q", got)
	}
	if got := f.GetLine(3); got != "third" {
		t.Fatalf("line 3: got %q", got)
	}
	if got := f.GetLine(9); got != "" {
		t.Fatalf("line 9: got %q", got)
	}
	if got := (&File{}).GetLine(1); got != "" {
		t.Fatalf("empty file: got %q", got)
	}
}

func TestDecodeFoldsCRLFAndBOM(t *testing.T) {
	out, flags := decode([]byte("\xEF\xBB\xBFa\r\nb\rc"))
	if string(out) != "a\nb\rc" {
		t.Fatalf("got %q", out)
	}
	if flags != FileHadBOM|FileNormalizedCRLF {
		t.Fatalf("flags = %b", flags)
	}
	if _, flags := decode([]byte("plain")); flags != 0 {
		t.Fatalf("plain text flagged %b", flags)
	}
}

func TestAddKeepsDuplicatePaths(t *testing.T) {
	fs := NewFileSet()
	a := fs.AddVirtual("./dir/../m.ts", []byte("1"))
	b := fs.AddVirtual("m.ts", []byte("2"))
	if a == b {
		t.Fatalf("duplicate path reused id %d", a)
	}
	if fs.Get(a).Path != "m.ts" || fs.Get(a).Flags&FileVirtual == 0 {
		t.Fatalf("file a: %+v", fs.Get(a))
	}
}
