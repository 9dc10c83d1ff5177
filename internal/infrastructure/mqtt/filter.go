package mqtt

import (
	"fmt"
	"strings"
)

// ValidateFilter checks a topic filter for MQTT well-formedness.
//
// Rules (per MQTT 3.1.1 section 4.7):
//   - The filter must not be empty
//   - '#' may only appear as the last level, occupying the whole level
//   - '+' must occupy a whole level
//
// Parameters:
//   - filter: The topic filter to validate
//
// Returns:
//   - error: ErrInvalidTopic (wrapped with detail) if malformed, nil otherwise
func ValidateFilter(filter string) error {
	if filter == "" {
		return ErrInvalidTopic
	}

	levels := strings.Split(filter, "/")
	for i, level := range levels {
		if level == "#" {
			if i != len(levels)-1 {
				return fmt.Errorf("%w: '#' must be the last level in %q", ErrInvalidTopic, filter)
			}
			continue
		}
		if strings.Contains(level, "#") {
			return fmt.Errorf("%w: '#' must occupy a whole level in %q", ErrInvalidTopic, filter)
		}
		if level != "+" && strings.Contains(level, "+") {
			return fmt.Errorf("%w: '+' must occupy a whole level in %q", ErrInvalidTopic, filter)
		}
	}

	return nil
}
