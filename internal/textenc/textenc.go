// Package textenc decodes byte content by trying a list of text encodings in
// order. Unlike a silent fallback loop, a decode that exhausts every candidate
// returns a *NoEncodingError listing what was attempted and why each failed.
package textenc

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Encoding names a supported text encoding
type Encoding string

const (
	UTF8     Encoding = "utf-8"
	UTF8Sig  Encoding = "utf-8-sig"
	ISO88591 Encoding = "iso-8859-1"
	Latin1   Encoding = "latin1"
	CP1252   Encoding = "cp1252"
)

// DefaultCandidates is the fallback order used when the caller does not
// supply one.
var DefaultCandidates = []Encoding{UTF8, UTF8Sig, ISO88591, Latin1, CP1252}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Attempt records one failed decode
type Attempt struct {
	Encoding Encoding
	Err      error
}

// NoEncodingError is returned when no candidate encoding could decode and
// parse the input.
type NoEncodingError struct {
	Source   string
	Attempts []Attempt
}

func (e *NoEncodingError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s (%v)", a.Encoding, a.Err)
	}
	return fmt.Sprintf("no encoding succeeded for %s: tried %s", e.Source, strings.Join(parts, ", "))
}

// Encodings returns the attempted encodings in order
func (e *NoEncodingError) Encodings() []Encoding {
	out := make([]Encoding, len(e.Attempts))
	for i, a := range e.Attempts {
		out[i] = a.Encoding
	}
	return out
}

// Result is a successful decode
type Result struct {
	Encoding Encoding
	Text     string
	// Failed lists the candidates that were tried before Encoding succeeded.
	Failed []Attempt
}

// Decode converts data to a UTF-8 string using enc
func Decode(data []byte, enc Encoding) (string, error) {
	switch normalize(enc) {
	case UTF8:
		if bytes.HasPrefix(data, utf8BOM) {
			return "", fmt.Errorf("unexpected byte order mark")
		}
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid utf-8 sequence")
		}
		return string(data), nil
	case UTF8Sig:
		trimmed := bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(trimmed) {
			return "", fmt.Errorf("invalid utf-8 sequence")
		}
		return string(trimmed), nil
	case ISO88591, Latin1:
		return decodeWith(charmap.ISO8859_1, data)
	case CP1252:
		return decodeWith(charmap.Windows1252, data)
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// normalize maps common aliases, including chardet's charset names, onto the
// supported encodings.
func normalize(enc Encoding) Encoding {
	switch strings.ToLower(strings.TrimSpace(string(enc))) {
	case "utf-8", "utf8":
		return UTF8
	case "utf-8-sig", "utf8-sig", "utf-8-bom":
		return UTF8Sig
	case "iso-8859-1", "iso8859-1", "latin-1":
		return ISO88591
	case "latin1":
		return Latin1
	case "cp1252", "windows-1252":
		return CP1252
	}
	return enc
}

// Detect asks chardet for the most likely charset. ok is false when the guess
// is not one of the supported encodings.
func Detect(data []byte) (Encoding, bool) {
	if bytes.HasPrefix(data, utf8BOM) {
		return UTF8Sig, true
	}
	res, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || res == nil {
		return "", false
	}
	enc := normalize(Encoding(res.Charset))
	for _, c := range DefaultCandidates {
		if enc == c {
			return enc, true
		}
	}
	return "", false
}

// Candidates returns the detected encoding (when supported) followed by base,
// without duplicates.
func Candidates(data []byte, base []Encoding) []Encoding {
	if len(base) == 0 {
		base = DefaultCandidates
	}
	seen := make(map[Encoding]bool, len(base)+1)
	var out []Encoding
	add := func(e Encoding) {
		e = normalize(e)
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	if guess, ok := Detect(data); ok {
		add(guess)
	}
	for _, e := range base {
		add(e)
	}
	return out
}

// Try decodes data with each candidate in turn and hands the text to parse.
// A decode error or a parse error moves on to the next candidate; the first
// candidate for which both succeed wins. parse may be nil.
func Try(source string, data []byte, candidates []Encoding, parse func(text string) error) (*Result, error) {
	var failed []Attempt
	for _, enc := range candidates {
		text, err := Decode(data, enc)
		if err == nil && parse != nil {
			err = parse(text)
		}
		if err != nil {
			failed = append(failed, Attempt{Encoding: enc, Err: err})
			continue
		}
		return &Result{Encoding: enc, Text: text, Failed: failed}, nil
	}
	return nil, &NoEncodingError{Source: source, Attempts: failed}
}
