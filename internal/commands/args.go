package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/taskremind/internal/model"
)

// splitArgs tokenises a command line, honouring single and double quotes.
func splitArgs(s string) ([]string, error) {
	var (
		out     []string
		cur     strings.Builder
		quote   rune
		inToken bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				out = append(out, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, &CommandError{Code: ErrCodeInvalidArgument, Message: "unterminated quote"}
	}
	if inToken {
		out = append(out, cur.String())
	}
	if len(out) == 0 {
		return nil, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	return out, nil
}

// flagSet maps normalized flag names to their value. Boolean flags given
// without a value are stored as "true".
type flagSet map[string]string

func normalizeFlag(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

// splitFlags separates positional tokens from --name value / --name=value
// pairs. A flag followed by another flag or nothing is boolean.
func splitFlags(tokens []string) ([]string, flagSet, error) {
	positional := make([]string, 0)
	flags := make(flagSet)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if !strings.HasPrefix(tok, "--") {
			positional = append(positional, tok)
			continue
		}
		name := strings.TrimPrefix(tok, "--")
		if name == "" {
			return nil, nil, &CommandError{Code: ErrCodeInvalidArgument, Message: "empty flag name"}
		}
		if k, v, ok := strings.Cut(name, "="); ok {
			flags[normalizeFlag(k)] = v
			continue
		}
		if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "--") && !isBoolFlag(name) {
			flags[normalizeFlag(name)] = tokens[i+1]
			i++
			continue
		}
		flags[normalizeFlag(name)] = "true"
	}
	return positional, flags, nil
}

func isBoolFlag(name string) bool {
	switch normalizeFlag(name) {
	case "recurring", "allow_past", "occurrences":
		return true
	}
	return false
}

func (f flagSet) has(name string) bool {
	_, ok := f[name]
	return ok
}

func (f flagSet) str(name string) string {
	return f[name]
}

func (f flagSet) boolean(name string) bool {
	v, ok := f[name]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func (f flagSet) integer(name string) (int, error) {
	v, ok := f[name]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &model.ValidationError{Field: name, Reason: fmt.Sprintf("%q is not an integer", v)}
	}
	return n, nil
}

func (f flagSet) duration(name string) (time.Duration, error) {
	v, ok := f[name]
	if !ok {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &model.ValidationError{Field: name, Reason: fmt.Sprintf("%q is not a duration", v)}
	}
	return d, nil
}

func (f flagSet) unknown(t Type, known ...string) error {
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}
	for name := range f {
		if !allowed[name] {
			return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s: unknown flag --%s", t, name)}
		}
	}
	return nil
}
