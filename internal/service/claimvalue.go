package service

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Harshitk-cp/consilium/internal/domain"
)

// NumericTolerance is the maximum relative difference between two numeric
// values still considered the same assertion.
const NumericTolerance = 0.01

// ClaimValue is the machine-comparable value extracted from a claim
// statement. Kind reflects the strongest signal found: a parseable date
// beats bare numbers, bare numbers beat plain text. Negated is tracked
// independently so polarity checks work on text claims.
type ClaimValue struct {
	Kind    domain.ClaimKind
	Numbers []float64
	Date    time.Time
	Negated bool
}

var numberPattern = regexp.MustCompile(`[-+]?\d+(?:,\d{3})*(?:\.\d+)?`)

var datePatterns = []struct {
	re      *regexp.Regexp
	layouts []string
}{
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), []string{"2006-01-02"}},
	{regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}`),
		[]string{"January 2, 2006", "January 2 2006"}},
	{regexp.MustCompile(`(?i)(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2},?\s+\d{4}`),
		[]string{"Jan 2, 2006", "Jan 2 2006"}},
}

var negationTokens = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"false":   true,
	"cannot":  true,
	"isn't":   true,
	"aren't":  true,
	"wasn't":  true,
	"weren't": true,
	"doesn't": true,
	"don't":   true,
	"didn't":  true,
	"won't":   true,
	"can't":   true,
}

// ExtractClaimValue parses a statement into its comparable value. It does
// not attempt full natural-language understanding; it only has to decide
// whether two same-topic statements can be compared mechanically.
func ExtractClaimValue(statement string) ClaimValue {
	v := ClaimValue{Kind: domain.ClaimKindText, Negated: containsNegation(statement)}

	remainder := statement
	for _, dp := range datePatterns {
		match := dp.re.FindString(remainder)
		if match == "" {
			continue
		}
		for _, layout := range dp.layouts {
			parsed, err := time.Parse(layout, match)
			if err == nil {
				v.Kind = domain.ClaimKindDate
				v.Date = parsed
				remainder = strings.Replace(remainder, match, "", 1)
				break
			}
		}
		if v.Kind == domain.ClaimKindDate {
			break
		}
	}

	for _, raw := range numberPattern.FindAllString(remainder, -1) {
		n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			continue
		}
		v.Numbers = append(v.Numbers, n)
	}
	if v.Kind != domain.ClaimKindDate && len(v.Numbers) > 0 {
		v.Kind = domain.ClaimKindNumeric
	}

	return v
}

func containsNegation(statement string) bool {
	for _, tok := range strings.Fields(strings.ToLower(statement)) {
		if negationTokens[strings.Trim(tok, `.,;:!?"'()[]`)] {
			return true
		}
	}
	return false
}

// pairKind decides which conflict test applies to a pair of same-topic
// claims. Mixed kinds and polarity flips on plain text fall through to the
// text test, which defers to the LLM.
func pairKind(a, b ClaimValue) domain.ClaimKind {
	switch {
	case a.Kind == domain.ClaimKindDate && b.Kind == domain.ClaimKindDate:
		return domain.ClaimKindDate
	case a.Kind == domain.ClaimKindNumeric && b.Kind == domain.ClaimKindNumeric:
		return domain.ClaimKindNumeric
	case a.Kind == domain.ClaimKindText && b.Kind == domain.ClaimKindText && a.Negated != b.Negated:
		return domain.ClaimKindBoolean
	default:
		return domain.ClaimKindText
	}
}

// numbersCompatible reports whether two extracted number sets assert the
// same values. Order is ignored: "3% in 2024" and "2024 saw 3%" carry the
// same numbers. Sets of different sizes are incomparable and are treated
// as compatible here so the text test can decide instead.
func numbersCompatible(a, b []float64) bool {
	if len(a) != len(b) {
		return true
	}
	as := append([]float64(nil), a...)
	bs := append([]float64(nil), b...)
	sort.Float64s(as)
	sort.Float64s(bs)
	for i := range as {
		if !numbersEqual(as[i], bs[i]) {
			return false
		}
	}
	return true
}

func numbersEqual(a, b float64) bool {
	if a == b {
		return true
	}
	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return true
	}
	return math.Abs(a-b)/largest <= NumericTolerance
}

// comparableNumbers reports whether the numeric test can give a verdict
// at all for this pair.
func comparableNumbers(a, b []float64) bool {
	return len(a) == len(b) && len(a) > 0
}

func normalizeStatement(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".!")
	return strings.Join(strings.Fields(s), " ")
}
