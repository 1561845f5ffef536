// Package moderation masks configured words in outgoing message text.
// It is optional: without a words list the chat service skips it entirely.
package moderation

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator replaces every occurrence of a censored word with maskChar,
// matching case-insensitively via an Aho-Corasick automaton.
type Moderator struct {
	matcher  *goahocorasick.Machine
	maskChar rune
}

func NewModerator(words []string, maskChar rune) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		patterns = append(patterns, []rune(strings.ToLower(word)))
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: machine, maskChar: maskChar}, nil
}

// NewModeratorFromFile loads one word per line. A missing path yields a
// nil moderator, which callers treat as moderation disabled.
func NewModeratorFromFile(path string, maskChar rune) (*Moderator, error) {
	if path == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewModerator(words, maskChar)
}

// Censor masks matched spans in the original text, preserving its length.
// Lowercasing is per-rune, so normalized offsets line up with the original.
func (m *Moderator) Censor(text string) string {
	if m == nil || text == "" {
		return text
	}

	original := []rune(text)
	normalized := make([]rune, len(original))
	for i, r := range original {
		normalized[i] = unicode.ToLower(r)
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return text
	}

	for _, span := range spans {
		for i := span.Pos; i < span.Pos+len(span.Word) && i < len(original); i++ {
			original[i] = m.maskChar
		}
	}
	return string(original)
}
