package service

import (
	"strings"
	"unicode"
)

// truncateRepeatedNGrams cuts text just before the first word that would repeat
// an n-gram already seen. Words compare case-insensitively with surrounding
// punctuation ignored. This mirrors a decoder-side no_repeat_ngram_size for
// backends that cannot enforce it while sampling.
func truncateRepeatedNGrams(text string, n int) string {
	if n <= 0 {
		return text
	}

	type word struct {
		start int
		norm  string
	}
	var words []word
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			words = append(words, word{start: i})
			inWord = true
		}
	}
	for i := range words {
		end := len(text)
		if i+1 < len(words) {
			end = words[i+1].start
		}
		words[i].norm = normalizeWord(text[words[i].start:end])
	}

	if len(words) < n {
		return text
	}

	seen := make(map[string]struct{})
	for i := n - 1; i < len(words); i++ {
		parts := make([]string, n)
		empty := false
		for j := 0; j < n; j++ {
			parts[j] = words[i-n+1+j].norm
			if parts[j] == "" {
				empty = true
			}
		}
		if empty {
			continue
		}
		key := strings.Join(parts, "\x00")
		if _, dup := seen[key]; dup {
			return text[:words[i].start]
		}
		seen[key] = struct{}{}
	}
	return text
}

func normalizeWord(w string) string {
	w = strings.TrimSpace(w)
	w = strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return strings.ToLower(w)
}
