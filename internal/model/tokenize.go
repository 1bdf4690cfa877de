package model

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// defaultTokenPattern is the pattern scikit-learn vectorizers ship with.
const defaultTokenPattern = `(?u)\b\w\w+\b`

type tokenizer func(doc string) []string

// wordTokens returns maximal runs of word characters at least two runes long.
// Word characters are Unicode letters, numbers and underscore.
func wordTokens(doc string) []string {
	var tokens []string
	start := -1
	flush := func(end int) {
		if start >= 0 && utf8.RuneCountInString(doc[start:end]) >= 2 {
			tokens = append(tokens, doc[start:end])
		}
		start = -1
	}

	for i, r := range doc {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(doc))

	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func newTokenizer(pattern string) (tokenizer, error) {
	if pattern == "" || pattern == defaultTokenPattern {
		return wordTokens, nil
	}

	goPattern, edges, err := translatePattern(pattern)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(goPattern)
	if err != nil {
		return nil, fmt.Errorf("compile token pattern: %w", err)
	}

	group := 0
	switch re.NumSubexp() {
	case 0:
	case 1:
		group = 1
	default:
		return nil, fmt.Errorf("token pattern %q has more than one capturing group", pattern)
	}

	return func(doc string) []string {
		var tokens []string
		for _, loc := range re.FindAllStringSubmatchIndex(doc, -1) {
			if edges.start && !atWordBoundary(doc, loc[0]) {
				continue
			}
			if edges.end && !atWordBoundary(doc, loc[1]) {
				continue
			}
			if loc[2*group] < 0 {
				tokens = append(tokens, "")
				continue
			}
			tokens = append(tokens, doc[loc[2*group]:loc[2*group+1]])
		}
		return tokens
	}, nil
}

// boundaryEdges records a \b stripped from either end of a token pattern.
type boundaryEdges struct {
	start, end bool
}

const (
	wordClass     = `\p{L}\p{N}_`
	spaceClass    = `\s\p{Z}`
	digitClass    = `\p{Nd}`
	nonDigitClass = `\P{Nd}`
)

// translatePattern rewrites a Python token pattern into Go RE2 syntax with
// Python's Unicode semantics for \w, \s and \d. A \b is honoured at either
// end of the pattern and rejected anywhere else.
func translatePattern(pattern string) (string, boundaryEdges, error) {
	var edges boundaryEdges
	p := strings.TrimPrefix(pattern, "(?u)")
	if strings.HasPrefix(p, `\b`) {
		edges.start = true
		p = p[2:]
	}
	if strings.HasSuffix(p, `\b`) && trailingBackslashes(p[:len(p)-1])%2 == 1 {
		edges.end = true
		p = p[:len(p)-2]
	}

	var b strings.Builder
	inClass := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c == '\\' && i+1 < len(p):
			i++
			esc := p[i]
			switch esc {
			case 'w':
				b.WriteString(wrapClass(wordClass, inClass))
			case 'W':
				if inClass {
					return "", edges, fmt.Errorf("token pattern %q: \\W inside a character class is not supported", pattern)
				}
				b.WriteString("[^" + wordClass + "]")
			case 's':
				b.WriteString(wrapClass(spaceClass, inClass))
			case 'S':
				if inClass {
					return "", edges, fmt.Errorf("token pattern %q: \\S inside a character class is not supported", pattern)
				}
				b.WriteString("[^" + spaceClass + "]")
			case 'd':
				b.WriteString(digitClass)
			case 'D':
				b.WriteString(nonDigitClass)
			case 'b':
				if !inClass {
					return "", edges, fmt.Errorf("token pattern %q: \\b is only supported at the ends of the pattern", pattern)
				}
				b.WriteString(`\x08`)
			case 'B':
				return "", edges, fmt.Errorf("token pattern %q: \\B is not supported", pattern)
			default:
				b.WriteByte(c)
				b.WriteByte(esc)
			}
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte(c)
			if i+1 < len(p) && p[i+1] == '^' {
				i++
				b.WriteByte('^')
			}
			if i+1 < len(p) && p[i+1] == ']' {
				i++
				b.WriteString(`\]`)
			}
		case c == ']' && inClass:
			inClass = false
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), edges, nil
}

func wrapClass(class string, inClass bool) string {
	if inClass {
		return class
	}
	return "[" + class + "]"
}

func trailingBackslashes(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n
}

// atWordBoundary reports whether exactly one side of byte offset i is a word rune.
func atWordBoundary(doc string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(doc[:i])
		before = isWordRune(r)
	}
	if i < len(doc) {
		r, _ := utf8.DecodeRuneInString(doc[i:])
		after = isWordRune(r)
	}
	return before != after
}

// accentStripper resolves the strip_accents option of an exported vectorizer.
func accentStripper(mode string) (func(string) string, error) {
	switch strings.ToLower(mode) {
	case "", "none":
		return nil, nil
	case "unicode":
		return func(s string) string {
			t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
			out, _, err := transform.String(t, s)
			if err != nil {
				return s
			}
			return out
		}, nil
	case "ascii":
		return func(s string) string {
			t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
				return r > unicode.MaxASCII
			})))
			out, _, err := transform.String(t, s)
			if err != nil {
				return s
			}
			return out
		}, nil
	default:
		return nil, fmt.Errorf("unsupported strip_accents %q", mode)
	}
}

// wordNgrams drops stop words and expands tokens into n-grams in [minN, maxN].
func wordNgrams(tokens []string, stopWords map[string]struct{}, minN, maxN int) []string {
	if len(stopWords) > 0 {
		kept := tokens[:0:0]
		for _, tok := range tokens {
			if _, stop := stopWords[tok]; !stop {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}

	if maxN == 1 {
		return tokens
	}

	original := tokens
	var terms []string
	if minN == 1 {
		terms = append(terms, original...)
		minN++
	}

	for n := minN; n <= maxN && n <= len(original); n++ {
		for i := 0; i+n <= len(original); i++ {
			terms = append(terms, strings.Join(original[i:i+n], " "))
		}
	}

	return terms
}
