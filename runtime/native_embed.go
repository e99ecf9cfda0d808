// Package runtimeembed provides the embedded host runtime that links with
// modules built by scriptc.
package runtimeembed

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"text/template"
)

// HostFileName is the name the host runtime is written under.
const HostFileName = "scriptc_host.c"

//go:embed native/*.tmpl
var nativeRuntimeFS embed.FS

var hostTemplate = template.Must(template.ParseFS(nativeRuntimeFS, "native/host.c.tmpl"))

// NativeRuntimeFS exposes the embedded runtime templates.
func NativeRuntimeFS() fs.FS {
	return nativeRuntimeFS
}

// HostOptions names the symbols the host runtime defines and calls.
type HostOptions struct {
	Entry       string
	Allocate    string
	Release     string
	ReportLeaks bool
}

// RenderHost renders a C file defining the allocation hooks and a main
// that calls the entry routine.
func RenderHost(opts HostOptions) ([]byte, error) {
	if opts.Entry == "" || opts.Allocate == "" || opts.Release == "" {
		return nil, fmt.Errorf("host runtime needs entry and hook names")
	}
	var buf bytes.Buffer
	err := hostTemplate.Execute(&buf, struct {
		HostOptions
		FileName string
	}{opts, HostFileName})
	if err != nil {
		return nil, fmt.Errorf("render host runtime: %w", err)
	}
	return buf.Bytes(), nil
}
