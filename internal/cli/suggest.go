package cli

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// suggest returns the closest candidate to input, or "" when nothing matches
func suggest(input string, candidates []string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}
	matches := fuzzy.Find(input, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

// withSuggestion decorates an unknown-name error with a hint
func withSuggestion(err error, input string, candidates []string) error {
	if s := suggest(input, candidates); s != "" {
		return fmt.Errorf("%w (did you mean %q?)", err, s)
	}
	return fmt.Errorf("%w (choose one of: %s)", err, strings.Join(candidates, ", "))
}
