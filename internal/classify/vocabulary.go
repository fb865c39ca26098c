package classify

import "strings"

// BaseVocabulary is the curated romanized vocabulary the near-miss rule
// compares against.
var BaseVocabulary = []string{
	"mama", "kolamba", "jiivath", "wenavaa", "adha", "kaalagunaya", "hondhai",
	"oyata", "kopi", "bonna", "oneedha", "ohu", "ithaa", "sarala", "ayek",
	"paasala", "yanavaa", "aeya", "giithayak", "gaayanavaa", "oyaage", "nama",
	"mokakdha", "obata", "kohedha", "yanna", "onee", "shakthimath", "kenek",
	"yanne", "heta", "udhe", "bankuwata", "meeka", "kaageedha", "thaakshanaya",
	"apage", "jeewithayata", "balapaalaa", "pusthakaalayata", "giyemi",
	"vaththe", "mal", "pipii", "thibuna", "mithuran", "ekka", "sellam", "kaLaa",
	"kuda", "daruwan", "sinaa", "unaa", "kurullo", "gas", "wala", "gee",
	"gayanaa", "paasale", "api", "paadam", "kalaa", "gedhara", "gihin", "note",
	"eka", "evannam", "amma", "samaga", "kaema", "haduwaa", "gamee", "paara",
	"pirisidhu", "varNayen", "eliya", "ahasa", "nil", "raee", "sanda",
	"eliyen", "lassanai", "oyaa", "kohomadha",
}

// minNearMissLength keeps short tokens out of the near-miss rule; most two or
// three letter words are one edit away from some vocabulary entry.
const minNearMissLength = 4

type vocabulary map[string]struct{}

func newVocabulary(extra []string) vocabulary {
	v := make(vocabulary, len(BaseVocabulary)+len(extra))
	for _, list := range [][]string{BaseVocabulary, extra} {
		for _, w := range list {
			w = strings.TrimSpace(w)
			if w != "" {
				v[folder.String(w)] = struct{}{}
			}
		}
	}
	return v
}

// nearMiss reports whether tok is unknown but one edit away from a known word.
func (v vocabulary) nearMiss(tok string) bool {
	if len(tok) < minNearMissLength {
		return false
	}
	if _, ok := v[tok]; ok {
		return false
	}
	for w := range v {
		if editDistanceOne(tok, w) {
			return true
		}
	}
	return false
}

// editDistanceOne reports whether a and b differ by exactly one insertion,
// deletion or substitution.
func editDistanceOne(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(ra)-len(rb) > 1 {
		return false
	}
	i, j, edits := 0, 0, 0
	for i < len(ra) && j < len(rb) {
		if ra[i] == rb[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if len(ra) == len(rb) {
			j++
		}
		i++
	}
	edits += len(ra) - i
	return edits == 1
}
