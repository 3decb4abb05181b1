package phoneme

import (
	"strings"
	"unicode"

	"github.com/maastricht-university/lipsync-pipeline/viseme"
)

// Silence marks a pause or word boundary.
const Silence = "sil"

var arpabet = map[string]viseme.Category{
	"P": viseme.PP, "B": viseme.PP, "M": viseme.PP,
	"F": viseme.FF, "V": viseme.FF,
	"TH": viseme.TH, "DH": viseme.TH,
	"T": viseme.DD, "D": viseme.DD,
	"K": viseme.KK, "G": viseme.KK, "HH": viseme.KK,
	"CH": viseme.CH, "JH": viseme.CH, "SH": viseme.CH, "ZH": viseme.CH,
	"S": viseme.SS, "Z": viseme.SS,
	"N": viseme.NN, "NG": viseme.NN, "L": viseme.NN,
	"R": viseme.RR, "ER": viseme.RR,
	"AA": viseme.AA, "AH": viseme.AA, "AY": viseme.AA, "AW": viseme.AA,
	"AE": viseme.E, "EH": viseme.E,
	"IY": viseme.I, "IH": viseme.I, "EY": viseme.I, "Y": viseme.I,
	"AO": viseme.O, "OW": viseme.O, "OY": viseme.O,
	"UH": viseme.U, "UW": viseme.U, "W": viseme.U,
}

var ipa = map[string]viseme.Category{
	"p": viseme.PP, "b": viseme.PP, "m": viseme.PP,
	"f": viseme.FF, "v": viseme.FF,
	"θ": viseme.TH, "ð": viseme.TH,
	"t": viseme.DD, "d": viseme.DD,
	"k": viseme.KK, "g": viseme.KK, "ɡ": viseme.KK, "h": viseme.KK, "x": viseme.KK,
	"ʃ": viseme.CH, "ʒ": viseme.CH, "tʃ": viseme.CH, "dʒ": viseme.CH,
	"s": viseme.SS, "z": viseme.SS,
	"n": viseme.NN, "ŋ": viseme.NN, "l": viseme.NN,
	"r": viseme.RR, "ɹ": viseme.RR, "ɾ": viseme.RR, "ɝ": viseme.RR, "ɚ": viseme.RR,
	"a": viseme.AA, "ɑ": viseme.AA, "ʌ": viseme.AA, "ə": viseme.AA, "aɪ": viseme.AA, "aʊ": viseme.AA,
	"æ": viseme.E, "e": viseme.E, "ɛ": viseme.E,
	"i": viseme.I, "ɪ": viseme.I, "j": viseme.I, "eɪ": viseme.I,
	"o": viseme.O, "ɔ": viseme.O, "oʊ": viseme.O, "ɔɪ": viseme.O,
	"u": viseme.U, "ʊ": viseme.U, "w": viseme.U,
}

// VisemeFor maps an ARPAbet or IPA symbol to its viseme. Stress digits and
// IPA stress/length marks are ignored; unknown symbols map to silence.
func VisemeFor(symbol string) viseme.Category {
	s := normalize(symbol)
	if c, ok := arpabet[strings.ToUpper(s)]; ok && isASCII(s) {
		return c
	}
	if c, ok := ipa[s]; ok {
		return c
	}
	return viseme.Sil
}

func normalize(symbol string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r), r == 'ˈ', r == 'ˌ', r == 'ː', unicode.IsSpace(r):
			return -1
		}
		return r
	}, symbol)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
