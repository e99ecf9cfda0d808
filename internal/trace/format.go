package trace

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Format is the output encoding of a stream tracer.
type Format uint8

const (
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
	FormatChrome
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatText:
		return "text"
	case FormatNDJSON:
		return "ndjson"
	case FormatChrome:
		return "chrome"
	}
	return "unknown"
}

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	case "chrome":
		return FormatChrome, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format %q (expected auto|text|ndjson|chrome)", s)
}

// FormatEvent encodes ev. Text and NDJSON records end in a newline; a
// Chrome record is one array element without separator.
func FormatEvent(ev Event, f Format) []byte {
	switch f {
	case FormatNDJSON:
		return formatNDJSON(ev)
	case FormatChrome:
		return formatChrome(ev)
	}
	return formatText(ev)
}

var (
	epochOnce sync.Once
	epoch     time.Time
)

// sinceEpoch is the offset of t from the first event formatted by this
// process.
func sinceEpoch(t time.Time) time.Duration {
	epochOnce.Do(func() { epoch = t })
	return t.Sub(epoch)
}

func formatText(ev Event) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%10.3fms t%-3d ", float64(sinceEpoch(ev.Time).Microseconds())/1000, ev.Track)
	switch ev.Kind {
	case KindBegin:
		b.WriteString("-> ")
	case KindEnd:
		b.WriteString("<- ")
	default:
		b.WriteString("*  ")
	}
	if ev.Scope != 0 {
		b.WriteString(ev.Scope.String())
		b.WriteByte(' ')
	}
	b.WriteString(ev.Name)
	if ev.Detail != "" {
		b.WriteString(" (")
		b.WriteString(ev.Detail)
		b.WriteByte(')')
	}
	if len(ev.Attrs) > 0 {
		b.WriteString(" {")
		for i, a := range ev.Attrs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Key)
			b.WriteByte('=')
			b.WriteString(a.Value)
		}
		b.WriteByte('}')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

type ndjsonRecord struct {
	Time   string            `json:"time"`
	Kind   string            `json:"kind"`
	Scope  string            `json:"scope,omitempty"`
	Span   uint64            `json:"span,omitempty"`
	Parent uint64            `json:"parent,omitempty"`
	Track  uint64            `json:"track,omitempty"`
	Name   string            `json:"name"`
	Detail string            `json:"detail,omitempty"`
	Attrs  map[string]string `json:"attrs,omitempty"`
}

func attrMap(attrs []Attr) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

func formatNDJSON(ev Event) []byte {
	rec := ndjsonRecord{
		Time:   ev.Time.UTC().Format(time.RFC3339Nano),
		Kind:   ev.Kind.String(),
		Span:   ev.Span,
		Parent: ev.Parent,
		Track:  ev.Track,
		Name:   ev.Name,
		Detail: ev.Detail,
		Attrs:  attrMap(ev.Attrs),
	}
	if ev.Scope != 0 {
		rec.Scope = ev.Scope.String()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return []byte(fmt.Sprintf("{\"kind\":\"error\",\"name\":%q}\n", err.Error()))
	}
	return append(data, '\n')
}

type chromeRecord struct {
	Name  string            `json:"name"`
	Cat   string            `json:"cat,omitempty"`
	Ph    string            `json:"ph"`
	Ts    int64             `json:"ts"`
	Pid   int               `json:"pid"`
	Tid   uint64            `json:"tid"`
	Scope string            `json:"s,omitempty"`
	Args  map[string]string `json:"args,omitempty"`
}

func formatChrome(ev Event) []byte {
	rec := chromeRecord{
		Name: ev.Name,
		Ts:   ev.Time.UnixMicro(),
		Pid:  1,
		Tid:  ev.Track,
		Args: attrMap(ev.Attrs),
	}
	if ev.Scope != 0 {
		rec.Cat = ev.Scope.String()
	}
	switch ev.Kind {
	case KindBegin:
		rec.Ph = "B"
	case KindEnd:
		rec.Ph = "E"
		if ev.Detail != "" {
			if rec.Args == nil {
				rec.Args = map[string]string{}
			}
			rec.Args["detail"] = ev.Detail
		}
	default:
		rec.Ph = "i"
		rec.Scope = "g"
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return []byte(fmt.Sprintf("{\"name\":%q,\"ph\":\"i\",\"ts\":0,\"pid\":1,\"tid\":0}", err.Error()))
	}
	return data
}
