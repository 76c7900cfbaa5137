package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxOrganizations = 5

var (
	datePattern = regexp.MustCompile(`\b(\d{1,2}[.\-]\d{1,2}[.\-]\d{2,4})\b`)

	numberPattern = regexp.MustCompile(`(?:ДОГОВОР|Договор|Номер договора|№)\s*[:№]?\s*([A-Za-zА-Яа-я0-9/\-]+)`)

	// The keyword prefix mirrors how amounts are phrased in contracts; the
	// captured number is either space-grouped thousands or a plain numeric
	// token, with an optional decimal part after a dot or comma.
	amountPattern = regexp.MustCompile(`(?:(?:сумма|итого к оплате|итого|стоимость|сумма договора)\s*[:\-]?\s*)?(\d{1,3}(?:[\s` + " " + `]\d{3})+(?:[.,]\d+)?|\d+(?:[.,]\d+)?)`)

	// Word-boundary handling for the legal-form marker is done in code:
	// Go's \b is ASCII-only and never matches next to Cyrillic letters.
	orgPattern = regexp.MustCompile(`(ООО|ПАО|ЗАО|АО|ИП)\s*[«"]?([A-Za-zА-Яа-я0-9\s.\-]+?)[»"]?(?:[\s,.]|$)`)
)

// ExtractFields runs the four independent pattern searches over normalized
// text. Fields that produce no match are omitted from the result entirely.
func ExtractFields(text string) map[string]any {
	fields := make(map[string]any)

	if date := extractDate(text); date != "" {
		fields["date"] = date
	}
	if number := extractNumber(text); number != "" {
		fields["number"] = number
	}
	if amount, ok := extractAmount(text); ok {
		fields["total_amount"] = amount
	}
	if orgs := extractOrganizations(text); len(orgs) > 0 {
		fields["organizations"] = orgs
	}

	return fields
}

// extractDate returns the first date-looking token verbatim, without
// calendar validation.
func extractDate(text string) string {
	match := datePattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[1]
}

func extractNumber(text string) string {
	match := numberPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[1]
}

// extractAmount collects every numeric candidate, normalizes separators
// (thousands spaces stripped, decimal comma becomes a dot), and keeps the
// maximum positive value. The "итого" phrasing tends to co-occur with the
// largest figure in a contract, which is why max wins.
func extractAmount(text string) (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, match := range amountPattern.FindAllStringSubmatch(text, -1) {
		normalized := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, match[1])
		normalized = strings.ReplaceAll(normalized, ",", ".")

		value, err := strconv.ParseFloat(normalized, 64)
		if err != nil || value <= 0 {
			continue
		}
		if !found || value > best {
			best = value
			found = true
		}
	}
	return best, found
}

// extractOrganizations finds legal-form markers followed by a quoted or bare
// name, formats each as `FORM «NAME»`, deduplicates exact matches in
// first-seen order and caps the result at maxOrganizations.
func extractOrganizations(text string) []string {
	var orgs []string
	seen := make(map[string]struct{})

	for _, idx := range orgPattern.FindAllStringSubmatchIndex(text, -1) {
		if !atWordBoundary(text, idx[0]) {
			continue
		}
		form := text[idx[2]:idx[3]]
		name := strings.TrimSpace(text[idx[4]:idx[5]])
		full := form + " «" + name + "»"
		if _, ok := seen[full]; ok {
			continue
		}
		seen[full] = struct{}{}
		orgs = append(orgs, full)
		if len(orgs) >= maxOrganizations {
			break
		}
	}
	return orgs
}

// atWordBoundary reports whether the rune before pos is absent or is neither
// a letter nor a digit, i.e. a Unicode word boundary.
func atWordBoundary(text string, pos int) bool {
	if pos == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:pos])
	return !unicode.IsLetter(prev) && !unicode.IsDigit(prev)
}
