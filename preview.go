package deliverables

import (
	"fmt"
	"strings"
)

// FormatFallout renders the fallout table as fixed-width text.
func FormatFallout(t *FalloutTable) string {
	var b strings.Builder
	b.WriteString("Preview Table:\n")
	for _, row := range t.Values() {
		fmt.Fprintf(&b, "%-15v%-10v%v\n", row[0], row[1], row[2])
	}
	return b.String()
}

// FormatReference renders a matched limit table row under its header.
func FormatReference(res *EndTestResult) string {
	if res == nil || len(res.Reference) != len(ReferenceHeader) {
		return ""
	}
	line := func(v []string) string {
		return fmt.Sprintf("%-10s%-10s%-15s%-10s%-10s%s\n", v[0], v[1], v[2], v[3], v[4], v[5])
	}
	var b strings.Builder
	b.WriteString("End Test No. Reference:\n")
	b.WriteString(line(ReferenceHeader))
	b.WriteString(strings.Repeat("-", 70) + "\n")
	b.WriteString(line(res.Reference))
	return b.String()
}
