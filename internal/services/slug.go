package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that do not decompose under NFD
var deburrReplacer = strings.NewReplacer(
	"ß", "ss", "Æ", "Ae", "æ", "ae", "Ø", "O", "ø", "o",
	"Œ", "Oe", "œ", "oe", "Đ", "D", "đ", "d", "Ł", "L", "ł", "l",
	"Þ", "Th", "þ", "th", "Ð", "D", "ð", "d",
)

var apostropheReplacer = strings.NewReplacer("'", "", "’", "")

// deburr strips combining marks so "Café" becomes "Cafe"
func deburr(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return deburrReplacer.Replace(out)
}

// KebabCase lowercases s and joins its words with '-'. Accents and
// apostrophes are dropped first. Words break on any other non-alphanumeric
// rune, between letters and digits, before an upper case rune that follows a
// lower case one, and before the last capital of an upper case run that
// continues in lower case. Ordinals such as "1st" or "42nd" stay whole.
// "F3Nashville" gives "f-3-nashville" and "XMLHttp Region" gives
// "xml-http-region".
func KebabCase(s string) string {
	var words []string
	for _, field := range strings.FieldsFunc(apostropheReplacer.Replace(deburr(s)), isWordSeparator) {
		words = append(words, splitWords([]rune(field))...)
	}
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}

func isWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// splitWords splits one alphanumeric run into digit runs, ordinals and
// case-delimited letter runs
func splitWords(rs []rune) []string {
	var words []string
	for i := 0; i < len(rs); {
		j := i
		if unicode.IsDigit(rs[i]) {
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			if end, ok := ordinalEnd(rs, j); ok {
				j = end
			}
			words = append(words, string(rs[i:j]))
			i = j
			continue
		}

		for j < len(rs) && !unicode.IsDigit(rs[j]) {
			j++
		}
		words = append(words, splitCase(rs[i:j])...)
		i = j
	}
	return words
}

// ordinalEnd reports whether rs[digitsEnd:] starts with the ordinal suffix
// matching the last digit, and where the ordinal ends
func ordinalEnd(rs []rune, digitsEnd int) (int, bool) {
	if digitsEnd+2 > len(rs) {
		return 0, false
	}
	suffix := string(rs[digitsEnd : digitsEnd+2])
	lower := strings.ToLower(suffix)
	if suffix != lower && suffix != strings.ToUpper(suffix) {
		return 0, false
	}

	var want string
	switch rs[digitsEnd-1] {
	case '1':
		want = "st"
	case '2':
		want = "nd"
	case '3':
		want = "rd"
	default:
		want = "th"
	}
	if lower != want {
		return 0, false
	}

	end := digitsEnd + 2
	if end == len(rs) {
		return end, true
	}
	next := rs[end]
	// a lower case suffix may run into a capital, an upper case one into a
	// lower case letter
	if suffix == lower && unicode.IsUpper(next) {
		return end, true
	}
	if suffix != lower && unicode.IsLower(next) {
		return end, true
	}
	return 0, false
}

func splitCase(rs []rune) []string {
	var words []string
	start := 0
	for i := 1; i < len(rs); i++ {
		prev, cur := rs[i-1], rs[i]
		lowerToUpper := unicode.IsUpper(cur) && !unicode.IsUpper(prev)
		acronymEnd := unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(rs) && unicode.IsLower(rs[i+1])
		if lowerToUpper || acronymEnd {
			words = append(words, string(rs[start:i]))
			start = i
		}
	}
	return append(words, string(rs[start:]))
}
