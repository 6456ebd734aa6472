package db

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"bizwiz/internal/errors"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier reports whether name is a plain or schema-qualified SQL
// identifier that is safe to interpolate into DDL.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// IsSQLFile reports whether queryOrFile names a .sql file rather than SQL text
func IsSQLFile(queryOrFile string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(queryOrFile)), ".sql")
}

// LoadSQL returns SQL text. A .sql path is read from disk; anything else is
// returned as-is. In both cases comments and control characters are removed.
func LoadSQL(queryOrFile string) (string, error) {
	text := queryOrFile
	if IsSQLFile(queryOrFile) {
		data, err := os.ReadFile(strings.TrimSpace(queryOrFile))
		if err != nil {
			if os.IsNotExist(err) {
				return "", errors.NotFound(fmt.Sprintf("SQL file %s", queryOrFile))
			}
			return "", fmt.Errorf("failed to read SQL file: %w", err)
		}
		text = string(data)
	}
	return strings.TrimSpace(StripNonPrintable(StripComments(text))), nil
}

// StripNonPrintable drops control characters other than tab, newline and
// carriage return.
func StripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if r == unicode.ReplacementChar || !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// StripComments removes -- line comments and /* */ block comments that are
// not inside single-quoted strings or double-quoted identifiers.
func StripComments(s string) string {
	var b strings.Builder
	var quote rune
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if quote != 0 {
			b.WriteRune(r)
			if r == quote {
				quote = 0
			}
			continue
		}
		switch {
		case r == '\'' || r == '"':
			quote = r
			b.WriteRune(r)
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			if i < len(runes) {
				b.WriteRune('\n')
			}
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i++
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SplitStatements splits SQL text on semicolons outside quotes and drops
// empty statements.
func SplitStatements(s string) []string {
	var out []string
	var b strings.Builder
	var quote rune
	flush := func() {
		if stmt := strings.TrimSpace(b.String()); stmt != "" {
			out = append(out, stmt)
		}
		b.Reset()
	}
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ';':
			flush()
			continue
		}
		b.WriteRune(r)
	}
	flush()
	return out
}
