package properties

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const labelSeparator = "-"

var whitespaceRun = regexp.MustCompile(`\s+`)

// fixedLabels overrides the derived label of a few resource names.
var fixedLabels = map[string]string{
	"CustomRecord": "[Custom Record]",
	"SuiteQL":      "[SuiteQL]",
}

// Label derives a human readable label from a schema name: camel case words
// are split, the first letter is upper-cased and hyphenated parts are joined
// with " - ". For example "customer-addressBook" becomes
// "Customer - Address Book".
func Label(name string) string {
	if label, ok := fixedLabels[name]; ok {
		return label
	}

	words := strings.Split(name, labelSeparator)
	for i, word := range words {
		words[i] = labelWord(word)
	}
	return strings.Join(words, " - ")
}

func labelWord(word string) string {
	var b strings.Builder
	for _, r := range word {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	w := b.String()
	if w != "" {
		r, size := utf8.DecodeRuneInString(w)
		w = string(unicode.ToUpper(r)) + w[size:]
	}

	// only the first run is collapsed
	if loc := whitespaceRun.FindStringIndex(w); loc != nil {
		w = w[:loc[0]] + " " + w[loc[1]:]
	}

	return strings.TrimSpace(w)
}

func newCollator() *collate.Collator {
	return collate.New(language.English)
}

func sortFieldsByLabel(fields []*domain.Field) {
	c := newCollator()
	slices.SortStableFunc(fields, func(a, b *domain.Field) int {
		return c.CompareString(a.DisplayName, b.DisplayName)
	})
}

// SortOptions orders options by name with English collation.
func SortOptions(options []domain.Option) {
	c := newCollator()
	slices.SortStableFunc(options, func(a, b domain.Option) int {
		return c.CompareString(a.Name, b.Name)
	})
}

func sortStrings(values []string) {
	c := newCollator()
	slices.SortStableFunc(values, c.CompareString)
}
