package lower

import (
	"errors"
	"fmt"

	"scriptc/internal/source"
)

// TranslationError reports a construct that has no lowering.
type TranslationError struct {
	Kind string
	Span source.Span
	Msg  string
}

func (e *TranslationError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("cannot translate %s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("cannot translate %s", e.Kind)
}

// UnknownCalleeRepresentationError reports a call whose callee is not a
// function value.
type UnknownCalleeRepresentationError struct {
	Span source.Span
	Type string
}

func (e *UnknownCalleeRepresentationError) Error() string {
	return fmt.Sprintf("cannot call a value of type %s", e.Type)
}

// SpanError attaches the source position of the node being translated to
// an error raised below the translator (layout, scope chain).
type SpanError struct {
	Span source.Span
	Err  error
}

func (e *SpanError) Error() string { return e.Err.Error() }
func (e *SpanError) Unwrap() error { return e.Err }

// ErrorSpan returns the source position carried by err, if any.
func ErrorSpan(err error) (source.Span, bool) {
	var te *TranslationError
	if errors.As(err, &te) {
		return te.Span, true
	}
	var ue *UnknownCalleeRepresentationError
	if errors.As(err, &ue) {
		return ue.Span, true
	}
	var se *SpanError
	if errors.As(err, &se) {
		return se.Span, true
	}
	return source.Span{}, false
}

func (t *Translator) at(sp source.Span, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := ErrorSpan(err); ok {
		return err
	}
	return &SpanError{Span: sp, Err: err}
}

func (t *Translator) unsupported(kind string, sp source.Span, msg string) error {
	return &TranslationError{Kind: kind, Span: sp, Msg: msg}
}
