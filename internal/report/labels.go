package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers are not safe for concurrent use, so each call builds its own.

// heading returns s in upper case for text report section headers.
func heading(s string) string {
	return cases.Upper(language.English).String(s)
}

// issueLabel turns an issue ID such as "form-labels" into "Form Labels".
func issueLabel(id string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(id, "-", " "))
}

// signed formats n with an explicit sign.
func signed(n int) string {
	return fmt.Sprintf("%+d", n)
}

// ratio formats "part of total", or "-" when there is nothing to count.
func ratio(part, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%d of %d (%.0f%%)", part, total, float64(part)*100/float64(total))
}
