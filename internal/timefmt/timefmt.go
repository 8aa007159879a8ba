package timefmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts a duration string into seconds.
//
// Accepted shapes are H:MM:SS[.fff], M:SS[.fff] and bare seconds. An empty
// string is zero. Malformed numeric segments contribute zero.
func Parse(s string) float64 {
	if s == "" {
		return 0
	}
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 3:
		return atoi(parts[0])*3600 + atoi(parts[1])*60 + atof(parts[2])
	case 2:
		return atoi(parts[0])*60 + atof(parts[1])
	default:
		return atof(parts[0])
	}
}

// Format renders a duration string for display: leading all-zero colon groups
// are dropped, the fraction is truncated to three digits and a fully zero
// value collapses to "0". An empty string stays empty.
//
//	"00:01:02.5000000" -> "1:02.500"
//	"00:00:09.87"      -> "9.87"
//	"00:00:00"         -> "0"
func Format(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.Split(s, ":")
	out := make([]string, 0, len(parts))
	nonzero := false
	for i, part := range parts {
		if i < len(parts)-1 {
			n := int(atoi(part))
			if !nonzero && n == 0 {
				continue
			}
			nonzero = true
			out = append(out, strconv.Itoa(n))
			continue
		}

		whole, frac, hasFrac := strings.Cut(part, ".")
		if !nonzero {
			whole = strings.TrimLeft(whole, "0")
			if whole == "" {
				whole = "0"
			}
		}
		if !hasFrac {
			out = append(out, whole)
			continue
		}
		if len(frac) > 3 {
			frac = frac[:3]
		}
		out = append(out, whole+"."+frac)
	}
	return strings.Join(out, ":")
}

// FormatSeconds renders a non-negative number of seconds with millisecond
// precision: "1.500" below a minute, "1:02.500" above. Negative input is
// rendered by magnitude.
func FormatSeconds(sec float64) string {
	ms := int64(math.Round(math.Abs(sec) * 1000))
	m := ms / 60000
	rem := ms % 60000
	if m > 0 {
		return fmt.Sprintf("%d:%02d.%03d", m, rem/1000, rem%1000)
	}
	return fmt.Sprintf("%d.%03d", rem/1000, rem%1000)
}

// FormatGap renders a signed time difference, e.g. "+0.500" or "-1:02.000".
func FormatGap(sec float64) string {
	if sec < 0 && math.Round(sec*1000) != 0 {
		return "-" + FormatSeconds(sec)
	}
	return "+" + FormatSeconds(sec)
}

func atoi(s string) float64 {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return float64(n)
}

func atof(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
