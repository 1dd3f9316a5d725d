package nobo

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateWeekProfile checks a profile the same way the hub firmware does:
// every token is HHMMS, the modes are 0, 1, 2 or 4 and there is exactly one
// midnight entry per day of the week.
func ValidateWeekProfile(profile []string) error {
	if len(profile) < 7 {
		return fmt.Errorf("week profile must have at least one entry per day, got %d", len(profile))
	}
	if !strings.HasPrefix(profile[0], "0000") {
		return fmt.Errorf("week profile must start at midnight, got %q", profile[0])
	}

	days := 0
	for _, token := range profile {
		if len(token) != 5 {
			return fmt.Errorf("invalid week profile entry %q", token)
		}
		hour, err := strconv.Atoi(token[0:2])
		if err != nil || hour > 23 {
			return fmt.Errorf("invalid hour in week profile entry %q", token)
		}
		minute, err := strconv.Atoi(token[2:4])
		if err != nil || minute > 59 {
			return fmt.Errorf("invalid minute in week profile entry %q", token)
		}
		if !strings.ContainsRune("0124", rune(token[4])) {
			return fmt.Errorf("invalid mode in week profile entry %q", token)
		}
		if hour == 0 && minute == 0 {
			days++
		}
	}
	if days != 7 {
		return fmt.Errorf("week profile must have exactly 7 midnight entries, got %d", days)
	}
	return nil
}

func encodeName(name string) string {
	return strings.ReplaceAll(name, " ", nbsp)
}

// DecodeName reverses the space encoding the hub uses for names.
func DecodeName(name string) string {
	return strings.ReplaceAll(name, nbsp, " ")
}
