package main

import (
	"strings"
)

// splitStatements splits a script into statements terminated by ';'. Semicolons
// inside single quoted literals do not terminate a statement. Lines starting
// with "--" are comments. A trailing statement without ';' is kept.
func splitStatements(script string) []string {
	var (
		statements []string
		current    strings.Builder
		inQuote    bool
	)

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			statements = append(statements, stmt+";")
		}
		current.Reset()
	}

	for _, line := range strings.Split(script, "\n") {
		if !inQuote && strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}

		for _, ch := range line {
			switch {
			case ch == '\'':
				inQuote = !inQuote
				current.WriteRune(ch)
			case ch == ';' && !inQuote:
				flush()
			default:
				current.WriteRune(ch)
			}
		}
		current.WriteByte('\n')
	}
	flush()

	return statements
}

// isComplete reports whether the buffered input ends a statement.
func isComplete(input string) bool {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, `\`) {
		return true
	}
	if !strings.HasSuffix(trimmed, ";") {
		return false
	}
	return strings.Count(trimmed, "'")%2 == 0
}
