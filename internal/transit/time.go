package transit

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTime converts a GTFS HH:MM:SS time into seconds since the
// service-day midnight. Hours past 24 are valid and denote service
// running into the next calendar day.
func ParseTime(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("transit: malformed time %q", s)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || h < 0 {
		return 0, fmt.Errorf("transit: malformed hours in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("transit: malformed minutes in %q", s)
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("transit: malformed seconds in %q", s)
	}
	return float64(h*3600 + m*60 + sec), nil
}
