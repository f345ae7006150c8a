package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DefaultTimeRange = time.Hour

// ParseTimeRange accepts Go durations ("15m", "1h30m") plus a day suffix
// ("7d"). An empty value yields DefaultTimeRange.
func ParseTimeRange(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultTimeRange, nil
	}

	if strings.HasSuffix(value, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(value, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid time range '%s'", value)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid time range '%s'", value)
	}

	return d, nil
}

func SplitCSV(value string) []string {
	out := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
