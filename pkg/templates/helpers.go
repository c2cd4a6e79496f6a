package templates

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
)

// FuncMap returns the helpers available to every template
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"join":    strings.Join,
		"lower":   strings.ToLower,
		"upper":   strings.ToUpper,
		"label":   Label,
		"pct":     Percent,
		"signed":  Signed,
		"count":   Count,
		"ordinal": humanize.Ordinal,
	}
}

// Label turns an identifier such as "real_estate" into "real estate"
func Label(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "_", " ")
}

// Percent formats a [0,1] ratio as a whole percentage
func Percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// Signed formats v with an explicit sign and two decimals
func Signed(v float64) string {
	return fmt.Sprintf("%+.2f", v)
}

// Count renders n with thousands separators and the noun pluralized when n != 1
func Count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

// Lines splits rendered output into trimmed non-empty lines
func Lines(s string) []string {
	raw := strings.Split(s, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Collapse joins rendered output into a single line with single spaces
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
