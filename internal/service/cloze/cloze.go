// Package cloze blanks a headword, including its inflected surfaces, out of an
// example sentence and records the forms that count as correct answers.
package cloze

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/heartmarshall/notas/internal/domain"
)

// Blank is the literal marker replacing each removed span.
const Blank = "________"

const (
	minStem   = 4
	stemRatio = 0.7
)

// punctuation stripped from the edges of a matched surface.
const punctuation = `.,;:!?"'()[]«»“”`

// Result is a cloze sentence with its accepted answers. Cloze is nil when no
// span of the sentence could be blanked; Answers is never empty.
type Result struct {
	Cloze   *string
	Answers []string
}

// HasCloze reports whether a blanked sentence is available.
func (r Result) HasCloze() bool { return r.Cloze != nil }

// Parts splits the cloze on Blank. It has len(Answers)+1 fragments, or is nil
// when there is no cloze.
func (r Result) Parts() []string {
	if r.Cloze == nil {
		return nil
	}
	return strings.Split(*r.Cloze, Blank)
}

// Accepts reports whether input matches any accepted answer after normalization.
func (r Result) Accepts(input string) bool {
	return slices.ContainsFunc(r.Answers, func(a string) bool {
		return domain.SameAnswer(a, input)
	})
}

// ForItem builds the cloze of the item's first example sentence.
func ForItem(item domain.Item) Result {
	return Build(item.Word, item.FirstExample().PT)
}

// Build blanks every word of pt that starts with the stem of word. The stem is
// the first max(4, 70%) characters of the lowercased headword. When nothing
// matches, the first token of at least four letters is blanked instead.
func Build(word, pt string) Result {
	headword := strings.ToLower(norm.NFC.String(word))
	if strings.TrimSpace(pt) == "" {
		return Result{Answers: []string{headword}}
	}
	pt = norm.NFC.String(pt)

	if cloze, answers := blankStem(pt, stem(headword)); len(answers) > 0 {
		return Result{Cloze: &cloze, Answers: answers}
	}
	if cloze, answer, ok := blankFirstLongToken(pt); ok {
		return Result{Cloze: &cloze, Answers: []string{answer}}
	}
	return Result{Answers: []string{headword}}
}

func stem(base string) []rune {
	runes := []rune(base)
	n := max(minStem, int(float64(len(runes))*stemRatio))
	return runes[:min(n, len(runes))]
}

// isWordRune mirrors \w extended to Unicode letters and combining marks.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// atBoundary reports a word boundary between runes[i-1] and runes[i].
func atBoundary(runes []rune, i int) bool {
	before := i > 0 && isWordRune(runes[i-1])
	after := i < len(runes) && isWordRune(runes[i])
	return before != after
}

// hasPrefixFold reports whether runes[i:] starts with prefix, ignoring case.
func hasPrefixFold(runes []rune, i int, prefix []rune) bool {
	if i+len(prefix) > len(runes) {
		return false
	}
	return strings.EqualFold(string(runes[i:i+len(prefix)]), string(prefix))
}

func blankStem(pt string, stem []rune) (string, []string) {
	if len(stem) == 0 {
		return pt, nil
	}
	runes := []rune(pt)

	var (
		b       strings.Builder
		answers []string
		last    int
	)
	for i := 0; i < len(runes); {
		if !atBoundary(runes, i) || !hasPrefixFold(runes, i, stem) {
			i++
			continue
		}
		end := i + len(stem)
		for end < len(runes) && isWordRune(runes[end]) {
			end++
		}
		b.WriteString(string(runes[last:i]))
		b.WriteString(Blank)
		answers = append(answers, cleanAnswer(string(runes[i:end])))
		last, i = end, end
	}
	if len(answers) == 0 {
		return pt, nil
	}
	b.WriteString(string(runes[last:]))
	return b.String(), answers
}

func blankFirstLongToken(pt string) (string, string, bool) {
	tokens := strings.Split(pt, " ")
	for i, tok := range tokens {
		core := strings.Trim(tok, punctuation)
		if len([]rune(core)) < minStem {
			continue
		}
		start := strings.Index(tok, core)
		tokens[i] = tok[:start] + Blank + tok[start+len(core):]
		return strings.Join(tokens, " "), cleanAnswer(core), true
	}
	return pt, "", false
}

func cleanAnswer(surface string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimRight(surface, punctuation)))
}
