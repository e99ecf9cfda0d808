package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"scriptc/internal/diag"
	"scriptc/internal/source"
)

type palette struct {
	sev   map[diag.Severity]*color.Color
	path  *color.Color
	gut   *color.Color
	caret *color.Color
	note  *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   mk(color.FgRed, color.Bold),
			diag.SevWarning: mk(color.FgYellow, color.Bold),
			diag.SevInfo:    mk(color.FgCyan, color.Bold),
		},
		path:  mk(color.Bold),
		gut:   mk(color.FgBlue),
		caret: mk(color.FgRed, color.Bold),
		note:  mk(color.FgCyan),
	}
}

// Pretty renders diagnostics for humans. Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with the primary span underlined, then the
// notes in the same form. Columns are measured in display cells, so wide
// characters before the span keep the carets aligned. Callers sort the bag
// first when they want a stable order.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		sev := p.sev[d.Severity]
		if sev == nil {
			sev = p.sev[diag.SevError]
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n", p.path.Sprint(location(fs, d.Primary, opts)), sev.Sprint(d.Severity.String()), d.Code.ID(), d.Message)
		excerpt(w, fs, d.Primary, opts, p)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), location(fs, n.Span, opts), n.Msg)
			excerpt(w, fs, n.Span, opts, p)
		}
	}
}

func location(fs *source.FileSet, sp source.Span, opts PrettyOpts) string {
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs.Get(sp.File), opts.PathMode, opts.BaseDir), start.Line, start.Col)
}

func excerpt(w io.Writer, fs *source.FileSet, sp source.Span, opts PrettyOpts, p palette) {
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(sp)
	ctx := uint32(max(opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	last := start.Line + ctx
	width := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		if ln > start.Line && text == "" {
			break
		}
		fmt.Fprintf(w, "%s %s\n", p.gut.Sprintf("%*d |", width, ln), text)
		if ln != start.Line {
			continue
		}
		from := clampCol(start.Col, text)
		to := len(text)
		if end.Line == start.Line {
			to = clampCol(end.Col, text)
		}
		pad := runewidth.StringWidth(text[:from])
		marks := max(runewidth.StringWidth(text[from:max(from, to)]), 1)
		fmt.Fprintf(w, "%s %s%s\n", p.gut.Sprint(strings.Repeat(" ", width)+" |"), strings.Repeat(" ", pad),
			p.caret.Sprint("^"+strings.Repeat("~", marks-1)))
	}
}

// clampCol turns a 1-based byte column into an offset within text.
func clampCol(col uint32, text string) int {
	off := int(col) - 1
	return min(max(off, 0), len(text))
}
