package phoneme

import (
	"strings"
	"unicode"
)

// Grapheme rules, longest match first. This is a rough English
// approximation; explicit phonemes via Parse are preferred when available.
var digraphs = []struct {
	letters string
	phones  []string
}{
	{"tch", []string{"CH"}},
	{"sh", []string{"SH"}},
	{"ch", []string{"CH"}},
	{"th", []string{"TH"}},
	{"ph", []string{"F"}},
	{"ng", []string{"NG"}},
	{"ck", []string{"K"}},
	{"qu", []string{"K", "W"}},
	{"wh", []string{"W"}},
	{"ee", []string{"IY"}},
	{"ea", []string{"IY"}},
	{"oo", []string{"UW"}},
	{"ou", []string{"AW"}},
	{"ow", []string{"OW"}},
	{"ai", []string{"EY"}},
	{"ay", []string{"EY"}},
	{"oi", []string{"OY"}},
	{"oy", []string{"OY"}},
}

var letters = map[rune][]string{
	'a': {"AE"}, 'b': {"B"}, 'c': {"K"}, 'd': {"D"}, 'e': {"EH"}, 'f': {"F"},
	'g': {"G"}, 'h': {"HH"}, 'i': {"IH"}, 'j': {"JH"}, 'k': {"K"}, 'l': {"L"},
	'm': {"M"}, 'n': {"N"}, 'o': {"AA"}, 'p': {"P"}, 'q': {"K"}, 'r': {"R"},
	's': {"S"}, 't': {"T"}, 'u': {"AH"}, 'v': {"V"}, 'w': {"W"}, 'x': {"K", "S"},
	'y': {"IY"}, 'z': {"Z"},
}

// FromText converts free text to ARPAbet symbols, separating words with
// Silence.
func FromText(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	var out []string
	for i, w := range words {
		if i > 0 {
			out = append(out, Silence)
		}
		out = append(out, word(strings.ReplaceAll(w, "'", ""))...)
	}
	return out
}

func word(w string) []string {
	// silent final e ("make", "note")
	if len(w) > 3 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "ee") {
		w = w[:len(w)-1]
	}
	var out []string
	rs := []rune(w)
	for i := 0; i < len(rs); {
		if n, ph := matchDigraph(string(rs[i:])); n > 0 {
			out = append(out, ph...)
			i += n
			continue
		}
		r := rs[i]
		// doubled consonants sound once
		if i > 0 && rs[i-1] == r && !isVowel(r) {
			i++
			continue
		}
		switch {
		case r == 'c' && i+1 < len(rs) && strings.ContainsRune("eiy", rs[i+1]):
			out = append(out, "S")
		case r == 'y' && i == 0:
			out = append(out, "Y")
		default:
			out = append(out, letters[r]...)
		}
		i++
	}
	return out
}

func matchDigraph(rest string) (int, []string) {
	for _, d := range digraphs {
		if strings.HasPrefix(rest, d.letters) {
			return len([]rune(d.letters)), d.phones
		}
	}
	return 0, nil
}

func isVowel(r rune) bool { return strings.ContainsRune("aeiou", r) }

// Parse splits an explicit phoneme string (space separated ARPAbet or IPA,
// "|" or "/" for word boundaries).
func Parse(s string) []string {
	var out []string
	for _, tok := range strings.Fields(s) {
		switch tok {
		case "|", "/":
			out = append(out, Silence)
		default:
			out = append(out, normalize(tok))
		}
	}
	return out
}
