// Package rules applies user-maintained substitutions to dictated
// transcripts before they reach the draft. Typed text and response text are
// never run through the engine.
package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

type rule struct {
	re          *regexp.Regexp
	replacement string
	firstOnly   bool
}

// Engine applies deterministic substitutions loaded from a rules file.
// A missing file yields an identity engine.
type Engine struct {
	rules     []rule
	loopLimit int
}

// NewEngine loads and compiles rules from a file. Two line formats are
// supported: literal (`spoken => written`, case-insensitive) and sed-style
// (`s/pattern/replacement/flags` with flags from i, g, m, s).
func NewEngine(path string, loopLimit int) (*Engine, error) {
	if loopLimit <= 0 {
		loopLimit = 30
	}

	if strings.TrimSpace(path) == "" {
		return &Engine{loopLimit: loopLimit}, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Engine{loopLimit: loopLimit}, nil
		}
		return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
	}

	rules, err := parseRules(string(contents))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %q: %w", path, err)
	}

	return &Engine{rules: rules, loopLimit: loopLimit}, nil
}

// Apply transforms dictated text deterministically. Rules are applied in
// file order, repeatedly, until a pass changes nothing or the iteration
// limit is reached.
func (e *Engine) Apply(text string) (string, error) {
	if len(e.rules) == 0 {
		return text, nil
	}

	result := text
	for i := 0; i < e.loopLimit; i++ {
		changed := false
		for _, r := range e.rules {
			next, ruleChanged := r.apply(result)
			if ruleChanged {
				result = next
				changed = true
			}
		}
		if !changed {
			return result, nil
		}
	}

	return result, nil
}

func (r rule) apply(input string) (string, bool) {
	if !r.firstOnly {
		output := r.re.ReplaceAllString(input, r.replacement)
		return output, output != input
	}

	loc := r.re.FindStringIndex(input)
	if loc == nil {
		return input, false
	}
	segment := input[loc[0]:loc[1]]
	output := input[:loc[0]] + r.re.ReplaceAllString(segment, r.replacement) + input[loc[1]:]
	return output, output != input
}

func parseRules(contents string) ([]rule, error) {
	lines := strings.Split(contents, "\n")
	rules := make([]rule, 0, len(lines))

	for index, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var (
			parsed rule
			err    error
		)
		switch {
		case looksLikeSedRule(line):
			parsed, err = parseSedRule(line)
		case strings.Contains(line, "=>"):
			parsed, err = parseLiteralRule(line)
		default:
			err = errors.New("unsupported rule format")
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", index+1, err)
		}
		rules = append(rules, parsed)
	}

	return rules, nil
}

func parseLiteralRule(line string) (rule, error) {
	parts := strings.SplitN(line, "=>", 2)
	from := strings.TrimSpace(parts[0])
	to := strings.TrimSpace(parts[1])
	if from == "" {
		return rule{}, errors.New("literal rule source cannot be empty")
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(from))
	if err != nil {
		return rule{}, fmt.Errorf("invalid literal source: %w", err)
	}

	return rule{re: re, replacement: to}, nil
}

func parseSedRule(line string) (rule, error) {
	delim := line[1]
	if isAlphaNumericOrSpace(delim) {
		return rule{}, errors.New("regex delimiter must be non-alphanumeric")
	}

	pattern, pos, err := parseDelimited(line, 2, delim)
	if err != nil {
		return rule{}, fmt.Errorf("invalid regex pattern: %w", err)
	}
	replacement, pos, err := parseDelimited(line, pos, delim)
	if err != nil {
		return rule{}, fmt.Errorf("invalid regex replacement: %w", err)
	}

	prefixFlags := "i"
	global := false
	for _, flag := range strings.TrimSpace(line[pos:]) {
		switch flag {
		case 'i':
			// case-insensitive is the default for dictation
		case 'g':
			global = true
		case 'm':
			prefixFlags += "m"
		case 's':
			prefixFlags += "s"
		case ' ':
		default:
			return rule{}, fmt.Errorf("unsupported regex flag %q", flag)
		}
	}

	re, err := regexp.Compile("(?" + prefixFlags + ")" + pattern)
	if err != nil {
		return rule{}, fmt.Errorf("invalid regex: %w", err)
	}

	return rule{re: re, replacement: replacement, firstOnly: !global}, nil
}

func parseDelimited(line string, start int, delim byte) (string, int, error) {
	if start >= len(line) {
		return "", 0, errors.New("unexpected end of expression")
	}

	var builder strings.Builder
	escaped := false
	for index := start; index < len(line); index++ {
		char := line[index]
		if escaped {
			builder.WriteByte(char)
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			builder.WriteByte(char)
			continue
		}
		if char == delim {
			return builder.String(), index + 1, nil
		}
		builder.WriteByte(char)
	}
	return "", 0, errors.New("unterminated expression")
}

func isAlphaNumericOrSpace(char byte) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9') ||
		char == ' ' || char == '\t'
}

func looksLikeSedRule(line string) bool {
	return len(line) > 1 && line[0] == 's' && !isAlphaNumericOrSpace(line[1])
}
