package parse

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// formatCodeRegex matches TrackMania nickname formatting codes: $xxx color
// triplets, single-letter style toggles and $h/$l links with an optional
// bracketed target.
var formatCodeRegex = regexp.MustCompile(`(\$[0-9a-fA-F]{3})|(\$[wWtTzZiIoOsSgGnNmM])|(\$[hHlL](\[.*?\])?)`)

var challengeIDRegex = regexp.MustCompile(`\*(\d+)\*`)

// Dedimania renders record dates day-first, usually with a time component.
var dateLayouts = []string{
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"02.01.2006 15:04",
	"02.01.2006",
}

// RecordTime converts "MM:SS.xx" record text into seconds, rounded to
// millisecond precision.
func RecordTime(text string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("record time %q: want MM:SS.xx", text)
	}

	mins, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("record time %q: minutes: %w", text, err)
	}
	secs, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("record time %q: seconds: %w", text, err)
	}

	return math.Round((mins*60+secs)*1000) / 1000, nil
}

// ChallengeID extracts the first integer enclosed between two asterisks in
// a challenge name, e.g. "Dodo *12* Race". The second return value is false
// when no such literal exists.
func ChallengeID(challengeName string) (int, bool) {
	m := challengeIDRegex.FindStringSubmatch(challengeName)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

// RecordDate parses the day-first date text Dedimania uses. The zero time
// and false are returned when nothing matches; callers treat that as a
// missing value, never as an error.
func RecordDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CleanNickname strips TrackMania $-formatting codes from a display name.
func CleanNickname(nickname string) string {
	return formatCodeRegex.ReplaceAllString(nickname, "")
}

// Int coerces numeric column text, returning 0 on anything unparsable.
func Int(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0
	}
	return n
}
