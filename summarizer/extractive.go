package summarizer

import (
	"sort"
	"strings"
	"unicode"
)

type sentence struct {
	index int
	text  string
	words []string
	score float64
}

// Extract builds an extractive summary of at most budget words: sentences are
// scored by the frequency of their content words and the best ones are kept
// in their original order.
func Extract(text string, budget int) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 || budget <= 0 {
		return ""
	}

	_, stop := stopwordsFor(text)
	freq := wordFrequencies(sentences, stop)
	for i := range sentences {
		sentences[i].score = scoreSentence(sentences[i], freq, stop)
	}

	ranked := make([]sentence, len(sentences))
	copy(ranked, sentences)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var picked []sentence
	used := 0
	for _, s := range ranked {
		n := len(strings.Fields(s.text))
		if used+n > budget {
			if len(picked) == 0 {
				s.text = strings.Join(strings.Fields(s.text)[:budget], " ")
				picked = append(picked, s)
			}
			continue
		}
		picked = append(picked, s)
		used += n
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].index < picked[j].index })

	parts := make([]string, len(picked))
	for i, s := range picked {
		parts[i] = s.text
	}
	return strings.Join(parts, " ")
}

// splitSentences cuts on newlines and on . ! ? followed by a space.
func splitSentences(text string) []sentence {
	var out []sentence
	for _, line := range strings.Split(text, "\n") {
		start := 0
		runes := []rune(line)
		for i, r := range runes {
			if (r == '.' || r == '!' || r == '?') && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
				out = appendSentence(out, string(runes[start:i+1]))
				start = i + 1
			}
		}
		if start < len(runes) {
			out = appendSentence(out, string(runes[start:]))
		}
	}
	return out
}

func appendSentence(out []sentence, text string) []sentence {
	text = strings.TrimSpace(text)
	if text == "" {
		return out
	}
	return append(out, sentence{index: len(out), text: text, words: tokenize(text)})
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func wordFrequencies(sentences []sentence, stop map[string]struct{}) map[string]float64 {
	freq := make(map[string]float64)
	for _, s := range sentences {
		for _, w := range s.words {
			if _, ok := stop[w]; !ok {
				freq[w]++
			}
		}
	}
	maxFreq := 0.0
	for _, f := range freq {
		maxFreq = max(maxFreq, f)
	}
	for w := range freq {
		freq[w] /= maxFreq
	}
	return freq
}

// scoreSentence is the mean normalised frequency of the content words.
func scoreSentence(s sentence, freq map[string]float64, stop map[string]struct{}) float64 {
	total, count := 0.0, 0
	for _, w := range s.words {
		if _, ok := stop[w]; ok {
			continue
		}
		total += freq[w]
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
