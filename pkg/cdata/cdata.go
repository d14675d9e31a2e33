// Package cdata builds C source/header file pairs.
package cdata

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CData is a pair of header and source text that grow together.
type CData struct {
	Header strings.Builder
	Source strings.Builder
}

// New returns an empty CData.
func New() *CData {
	return &CData{}
}

// Headerf appends formatted text to the header.
func (c *CData) Headerf(format string, args ...any) {
	fmt.Fprintf(&c.Header, format, args...)
}

// Sourcef appends formatted text to the source.
func (c *CData) Sourcef(format string, args ...any) {
	fmt.Fprintf(&c.Source, format, args...)
}

// Append appends other's header and source.
func (c *CData) Append(other *CData) {
	if other == nil {
		return
	}
	c.Header.WriteString(other.Header.String())
	c.Source.WriteString(other.Source.String())
}

var upper = cases.Upper(language.Und)

// GuardName returns the include guard for a header file name, e.g.
// "gLinkSkel" -> "GLINKSKEL_H". Directory components are dropped.
func GuardName(filename string) string {
	base := filepath.Base(filepath.ToSlash(filename))
	base = strings.TrimSuffix(base, ".h")
	return ToAlnum(upper.String(base)) + "_H"
}

// Guarded wraps body in an include guard for filename.
func Guarded(filename, body string) string {
	g := GuardName(filename)
	return fmt.Sprintf("#ifndef %s\n#define %s\n\n%s\n#endif\n", g, g, body)
}

// Include returns an #include line for a local header.
func Include(header string) string {
	return fmt.Sprintf("#include \"%s\"\n", header)
}
