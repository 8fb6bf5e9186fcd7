package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseISODuration разбирает длительность в формате ISO 8601
// (PnW | PnDTnHnMnS). Месяцы и годы не поддерживаются: у них нет
// фиксированной длины, а tenderingDuration в реестре задаётся днями и
// часами.
func ParseISODuration(s string) (time.Duration, error) {
	orig := s
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("parse duration %q: missing P designator", orig)
	}
	s = s[1:]
	if s == "" {
		return 0, fmt.Errorf("parse duration %q: empty", orig)
	}

	datePart := s
	timePart := ""
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		datePart, timePart = s[:i], s[i+1:]
		if timePart == "" {
			return 0, fmt.Errorf("parse duration %q: dangling T", orig)
		}
	}

	var total time.Duration

	units := []struct {
		part string
		unit map[byte]time.Duration
	}{
		{datePart, map[byte]time.Duration{
			'W': 7 * 24 * time.Hour,
			'D': 24 * time.Hour,
		}},
		{timePart, map[byte]time.Duration{
			'H': time.Hour,
			'M': time.Minute,
			'S': time.Second,
		}},
	}

	for _, u := range units {
		rest := u.part
		for rest != "" {
			j := strings.IndexFunc(rest, func(r rune) bool {
				return r < '0' || r > '9'
			})
			if j <= 0 {
				return 0, fmt.Errorf("parse duration %q: unexpected %q", orig, rest)
			}
			n, err := strconv.Atoi(rest[:j])
			if err != nil {
				return 0, fmt.Errorf("parse duration %q: %w", orig, err)
			}
			mult, ok := u.unit[rest[j]]
			if !ok {
				return 0, fmt.Errorf("parse duration %q: unknown designator %q", orig, rest[j])
			}
			total += time.Duration(n) * mult
			rest = rest[j+1:]
		}
	}

	return total, nil
}
