package cdata

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks folds accented letters to their base letter ("é" -> "e").
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isIdentRune(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// ToAlnum turns name into a C identifier: accents are folded, every other
// character outside [A-Za-z0-9] and exceptions becomes '_', and a leading
// digit gets a '_' prefix. An empty name stays empty.
func ToAlnum(name string, exceptions ...rune) string {
	if name == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range stripMarks(name) {
		if isIdentRune(r) || containsRune(exceptions, r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	out := b.String()
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

func containsRune(set []rune, r rune) bool {
	for _, s := range set {
		if s == r {
			return true
		}
	}
	return false
}

// HexArray formats data as comma separated 0xNN bytes, perLine per row,
// each row indented with one tab.
func HexArray(data []byte, perLine int) string {
	var b strings.Builder
	for i, v := range data {
		if i%perLine == 0 {
			b.WriteString("\t")
		}
		b.WriteString("0x")
		b.WriteByte(hexDigits[v>>4])
		b.WriteByte(hexDigits[v&0xF])
		b.WriteString(",")
		if i%perLine == perLine-1 || i == len(data)-1 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

const hexDigits = "0123456789ABCDEF"
