package openadas

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Level is an atomic energy level label. Most OpenADAS tables use principal
// quantum numbers, but labels are opaque to the resolver.
type Level string

// N returns the level for principal quantum number n.
func N(n int) Level {
	return Level(strconv.Itoa(n))
}

// Transition is an ordered (initial, final) level pair identifying a line.
type Transition struct {
	Initial Level
	Final   Level
}

// T builds a transition between principal quantum numbers.
func T(initial, final int) Transition {
	return Transition{Initial: N(initial), Final: N(final)}
}

// String renders the transition in its configuration key form, "8-7".
// Levels containing a separator use the tuple form, quoted when a level
// contains a comma or starts with a quote, so the result parses back to t.
func (t Transition) String() string {
	initial, final := string(t.Initial), string(t.Final)
	if needsQuotes(initial) || needsQuotes(final) {
		return fmt.Sprintf("(%s, %s)", quoteLevel(initial), quoteLevel(final))
	}
	if strings.Contains(initial, "-") || strings.Contains(final, "-") {
		return fmt.Sprintf("(%s, %s)", initial, final)
	}
	return initial + "-" + final
}

func needsQuotes(level string) bool {
	return strings.Contains(level, ",") || strings.HasPrefix(level, "'") || strings.HasPrefix(level, `"`)
}

func quoteLevel(level string) string {
	if strings.Contains(level, "'") {
		return `"` + level + `"`
	}
	return "'" + level + "'"
}

// MarshalText allows transitions to be used as map keys in documents.
func (t Transition) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses "8-7", "8,7" or "(8, 7)".
func (t *Transition) UnmarshalText(text []byte) error {
	parsed, err := ParseTransition(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTransition parses the textual forms accepted by UnmarshalText.
func ParseTransition(value string) (Transition, error) {
	raw := strings.TrimSpace(value)
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		raw = strings.TrimSpace(raw[1 : len(raw)-1])
	}
	var (
		initial, final string
		ok             bool
	)
	if raw != "" && (raw[0] == '\'' || raw[0] == '"') {
		initial, final, ok = cutQuoted(raw)
	} else {
		sep := ","
		if !strings.Contains(raw, sep) {
			sep = "-"
		}
		initial, final, ok = strings.Cut(raw, sep)
		initial = unquoteLevel(strings.TrimSpace(initial))
	}
	final = unquoteLevel(strings.TrimSpace(final))
	if !ok || initial == "" || final == "" {
		return Transition{}, errors.Newf("openadas: invalid transition %q", value)
	}
	return Transition{Initial: Level(initial), Final: Level(final)}, nil
}

// cutQuoted splits "'a,b', c" at the comma following the quoted first level.
func cutQuoted(raw string) (string, string, bool) {
	quote := raw[0]
	end := strings.IndexByte(raw[1:], quote)
	if end < 0 {
		return "", "", false
	}
	initial := raw[1 : end+1]
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw[end+2:]), ",")
	return initial, rest, ok
}

func unquoteLevel(level string) string {
	if n := len(level); n >= 2 && (level[0] == '\'' || level[0] == '"') && level[n-1] == level[0] {
		return level[1 : n-1]
	}
	return level
}
