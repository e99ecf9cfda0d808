package driver

import (
	"errors"
	"strings"

	"scriptc/internal/diag"
	"scriptc/internal/layout"
	"scriptc/internal/lower"
	"scriptc/internal/scope"
	"scriptc/internal/source"
)

// LowerErrorCode maps an error returned by lower.Lower to its diagnostic code.
func LowerErrorCode(err error) diag.Code {
	var (
		unresolved *scope.UnresolvedReferenceError
		recursive  *layout.RecursiveTypeError
		missing    *layout.FieldNotFoundError
		structural *layout.NotStructuralError
		callee     *lower.UnknownCalleeRepresentationError
		translate  *lower.TranslationError
	)
	switch {
	case errors.As(err, &unresolved):
		return diag.LowUnresolvedReference
	case errors.As(err, &recursive):
		return diag.LowRecursiveType
	case errors.As(err, &missing):
		return diag.LowFieldNotFound
	case errors.As(err, &structural):
		return diag.LowNotStructural
	case errors.As(err, &callee):
		return diag.LowUnknownCallee
	case errors.As(err, &translate):
		return diag.LowUnsupported
	}
	return diag.LowInternal
}

func reportLowerError(bag *diag.Bag, file source.FileID, err error) {
	sp, ok := lower.ErrorSpan(err)
	var unresolved *scope.UnresolvedReferenceError
	if !ok && errors.As(err, &unresolved) {
		sp, ok = unresolved.Span, true
	}
	if !ok {
		sp = source.Span{File: file}
	}
	d := diag.NewError(LowerErrorCode(err), sp, err.Error())

	var recursive *layout.RecursiveTypeError
	if errors.As(err, &recursive) && len(recursive.Cycle) > 0 {
		d = d.WithNote(sp, "cycle: "+strings.Join(recursive.Cycle, " -> "))
	}
	bag.Add(d)
}
