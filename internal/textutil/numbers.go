package textutil

import (
	"strconv"
	"strings"
)

// ParseApproxCount turns abbreviated counters the platforms show ("3.2K",
// "1.4M", "2B", "1,234") into integers. Unparseable input comes back as 0.
func ParseApproxCount(s string) int {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	multi := 1.0
	if strings.HasSuffix(s, "K") {
		multi = 1_000.0
		s = strings.TrimSuffix(s, "K")
	} else if strings.HasSuffix(s, "M") {
		multi = 1_000_000.0
		s = strings.TrimSuffix(s, "M")
	} else if strings.HasSuffix(s, "B") {
		multi = 1_000_000_000.0
		s = strings.TrimSuffix(s, "B")
	}

	val, _ := strconv.ParseFloat(s, 64)
	return int(val * multi)
}
