package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator masks forbidden words in message content.
// Matching ignores case, punctuation, spacing and common leet speak, the
// masked output keeps the original length and layout.
type Moderator struct {
	log          *slog.Logger
	matcher      *goahocorasick.Machine
	censoredChar rune
}

type TextMapping struct {
	Normalized []rune
	OrigIdx    []int
}

// NewModerator builds the Aho-Corasick automaton from the normalized word list.
// Words that normalize to nothing (pure punctuation) are ignored.
func NewModerator(censoredWords []string, censoredChar rune, log *slog.Logger) (*Moderator, error) {
	patterns := make([][]rune, 0, len(censoredWords))
	for _, word := range censoredWords {
		pattern := normalizeRunes([]rune(word))
		if len(pattern) == 0 {
			log.Debug("Ignoring empty moderation pattern", "word", word)
			continue
		}
		patterns = append(patterns, pattern)
	}

	mod := &Moderator{log: log, censoredChar: censoredChar}
	if len(patterns) == 0 {
		return mod, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	mod.matcher = m
	return mod, nil
}

// Censor replaces every matched span with the censored char and returns the
// matched dictionary words in order of appearance (nil if none).
func (m *Moderator) Censor(original string) (string, []string) {
	if m == nil || m.matcher == nil {
		return original, nil
	}
	mapping := m.normalize(original)
	if len(mapping.Normalized) == 0 {
		return original, nil
	}

	spans := m.matcher.MultiPatternSearch(mapping.Normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	origRunes := []rune(original)
	var words []string
	for _, span := range spans {
		normStart := span.Pos
		normEnd := normStart + len(span.Word)
		if normStart < 0 || normEnd > len(mapping.OrigIdx) {
			continue
		}

		origStart := mapping.OrigIdx[normStart]
		origEnd := mapping.OrigIdx[normEnd-1] + 1
		for i := origStart; i < origEnd; i++ {
			origRunes[i] = m.censoredChar
		}
		words = append(words, string(span.Word))
	}

	if len(words) > 0 {
		m.log.Debug("Content censored", "words", len(words))
	}
	return string(origRunes), words
}

// normalize builds the searchable form of input and remembers where each
// normalized rune comes from.
func (m *Moderator) normalize(input string) TextMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return TextMapping{Normalized: norm, OrigIdx: origIdx}
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps leet speak back to letters.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
