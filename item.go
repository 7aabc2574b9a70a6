package edgarseg

import (
	"regexp"
	"sort"
	"strings"
)

// FormType identifies an SEC form family supported by the engine.
type FormType string

// Supported form families.
const (
	Form10K FormType = "10-K"
	Form10Q FormType = "10-Q"
	Form8K  FormType = "8-K"
)

// NormalizeFormType maps a raw header form type onto a supported FormType.
// Amendments and transitional variants fold into their base family
// (e.g. "10-K/A", "10-K405", "10-QT"). The second return is false when the
// form family is not supported.
func NormalizeFormType(raw string) (FormType, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(s, "10-K"):
		return Form10K, true
	case strings.HasPrefix(s, "10-Q"):
		return Form10Q, true
	case strings.HasPrefix(s, "8-K"):
		return Form8K, true
	}
	return "", false
}

// Item identifies one extractable top-level section of a form.
type Item struct {
	// ID is the stable section identifier callers pass in,
	// e.g. "risk-factors".
	ID string

	// Number is the item number as printed in filings, e.g. "1A" or "5.02".
	Number string

	// Title is the canonical section title from the form instructions.
	Title string

	// Part is the part prefix for forms that group items into parts
	// ("I" or "II" for a 10-Q), empty otherwise.
	Part string

	// Key overrides the fragment used for last-resort substring matching.
	// Empty means the lowercase Title is used.
	Key string
}

// KeyFragment returns the lowercase fragment used for flexible matching.
func (it Item) KeyFragment() string {
	if it.Key != "" {
		return it.Key
	}
	return strings.ToLower(it.Title)
}

// AnchorKey returns the canonical normalized anchor spelling for the item,
// e.g. "item1a". Anchor ids and TOC fragments are compared against it after
// stripping non-alphanumerics.
func (it Item) AnchorKey() string {
	return "item" + NormalizeAnchor(it.Number)
}

// NormalizeAnchor lowercases s and strips everything but letters and digits,
// so "ITEM_1A", "Item-1A" and "#item1a" all compare equal.
func NormalizeAnchor(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var form10KItems = []Item{
	{ID: "business", Number: "1", Title: "Business"},
	{ID: "risk-factors", Number: "1A", Title: "Risk Factors"},
	{ID: "unresolved-staff-comments", Number: "1B", Title: "Unresolved Staff Comments"},
	{ID: "cybersecurity", Number: "1C", Title: "Cybersecurity"},
	{ID: "properties", Number: "2", Title: "Properties"},
	{ID: "legal-proceedings", Number: "3", Title: "Legal Proceedings"},
	{ID: "mine-safety", Number: "4", Title: "Mine Safety Disclosures", Key: "mine safety"},
	{ID: "market-for-equity", Number: "5", Title: "Market for Registrant's Common Equity, Related Stockholder Matters and Issuer Purchases of Equity Securities", Key: "market for registrant"},
	{ID: "selected-financial-data", Number: "6", Title: "Selected Financial Data"},
	{ID: "mdna", Number: "7", Title: "Management's Discussion and Analysis of Financial Condition and Results of Operations", Key: "discussion and analysis"},
	{ID: "market-risk", Number: "7A", Title: "Quantitative and Qualitative Disclosures About Market Risk", Key: "market risk"},
	{ID: "financial-statements", Number: "8", Title: "Financial Statements and Supplementary Data", Key: "financial statements"},
	{ID: "changes-disagreements", Number: "9", Title: "Changes in and Disagreements with Accountants on Accounting and Financial Disclosure", Key: "disagreements with accountants"},
	{ID: "controls-procedures", Number: "9A", Title: "Controls and Procedures"},
	{ID: "other-information", Number: "9B", Title: "Other Information"},
	{ID: "foreign-jurisdictions", Number: "9C", Title: "Disclosure Regarding Foreign Jurisdictions that Prevent Inspections", Key: "foreign jurisdictions"},
	{ID: "directors-governance", Number: "10", Title: "Directors, Executive Officers and Corporate Governance", Key: "directors"},
	{ID: "executive-compensation", Number: "11", Title: "Executive Compensation"},
	{ID: "security-ownership", Number: "12", Title: "Security Ownership of Certain Beneficial Owners and Management and Related Stockholder Matters", Key: "security ownership"},
	{ID: "related-transactions", Number: "13", Title: "Certain Relationships and Related Transactions, and Director Independence", Key: "related transactions"},
	{ID: "accountant-fees", Number: "14", Title: "Principal Accountant Fees and Services", Key: "accountant fees"},
	{ID: "exhibits", Number: "15", Title: "Exhibits and Financial Statement Schedules", Key: "exhibit"},
}

var form10QItems = []Item{
	{ID: "financial-statements", Number: "1", Part: "I", Title: "Financial Statements"},
	{ID: "mdna", Number: "2", Part: "I", Title: "Management's Discussion and Analysis of Financial Condition and Results of Operations", Key: "discussion and analysis"},
	{ID: "market-risk", Number: "3", Part: "I", Title: "Quantitative and Qualitative Disclosures About Market Risk", Key: "market risk"},
	{ID: "controls-procedures", Number: "4", Part: "I", Title: "Controls and Procedures"},
	{ID: "legal-proceedings", Number: "1", Part: "II", Title: "Legal Proceedings"},
	{ID: "risk-factors", Number: "1A", Part: "II", Title: "Risk Factors"},
	{ID: "unregistered-sales", Number: "2", Part: "II", Title: "Unregistered Sales of Equity Securities and Use of Proceeds", Key: "unregistered sales"},
	{ID: "defaults", Number: "3", Part: "II", Title: "Defaults Upon Senior Securities", Key: "defaults upon"},
	{ID: "mine-safety", Number: "4", Part: "II", Title: "Mine Safety Disclosures", Key: "mine safety"},
	{ID: "other-information", Number: "5", Part: "II", Title: "Other Information"},
	{ID: "exhibits", Number: "6", Part: "II", Title: "Exhibits", Key: "exhibit"},
}

var form8KItems = []Item{
	{ID: "material-agreement", Number: "1.01", Title: "Entry into a Material Definitive Agreement", Key: "material definitive agreement"},
	{ID: "agreement-termination", Number: "1.02", Title: "Termination of a Material Definitive Agreement", Key: "termination of a material"},
	{ID: "acquisition-disposition", Number: "2.01", Title: "Completion of Acquisition or Disposition of Assets", Key: "acquisition or disposition"},
	{ID: "results-of-operations", Number: "2.02", Title: "Results of Operations and Financial Condition", Key: "results of operations"},
	{ID: "delisting", Number: "3.01", Title: "Notice of Delisting or Failure to Satisfy a Continued Listing Rule", Key: "delisting"},
	{ID: "auditor-changes", Number: "4.01", Title: "Changes in Registrant's Certifying Accountant", Key: "certifying accountant"},
	{ID: "officer-changes", Number: "5.02", Title: "Departure of Directors or Certain Officers; Election of Directors; Appointment of Certain Officers", Key: "departure of directors"},
	{ID: "shareholder-vote", Number: "5.07", Title: "Submission of Matters to a Vote of Security Holders", Key: "vote of security holders"},
	{ID: "regulation-fd", Number: "7.01", Title: "Regulation FD Disclosure", Key: "regulation fd"},
	{ID: "other-events", Number: "8.01", Title: "Other Events"},
	{ID: "financial-exhibits", Number: "9.01", Title: "Financial Statements and Exhibits", Key: "financial statements and exhibits"},
}

var itemsByForm = map[FormType][]Item{
	Form10K: form10KItems,
	Form10Q: form10QItems,
	Form8K:  form8KItems,
}

// Items returns the fixed section enumeration for a form, in form order.
// The returned slice must not be modified.
func Items(form FormType) []Item {
	return itemsByForm[form]
}

// LookupItem resolves a section identifier for a form.
func LookupItem(form FormType, id string) (Item, bool) {
	for _, it := range itemsByForm[form] {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// NextItems returns the items that follow it in form order. These are the
// candidate end boundaries when narrowing a document to one section.
func NextItems(form FormType, it Item) []Item {
	items := itemsByForm[form]
	for i := range items {
		if items[i].ID == it.ID && items[i].Part == it.Part {
			return items[i+1:]
		}
	}
	return nil
}

// Pattern caches, built once at init. The corpus of patterns is small and
// fixed, so eager compilation keeps every later call allocation-free.
var (
	headingPatterns  = map[FormType]map[string]*regexp.Regexp{}
	titlePatterns    = map[FormType]map[string]*regexp.Regexp{}
	topLevelPatterns = map[FormType]*regexp.Regexp{}

	// partHeadingPattern matches a bare part divider such as "PART II" or
	// "Part I — Financial Information".
	partHeadingPattern = regexp.MustCompile(`(?i)^part\s+(?:[ivx]+|\d+)\b[\s.,:;\-–—]*`)
)

func init() {
	for form, items := range itemsByForm {
		headingPatterns[form] = make(map[string]*regexp.Regexp, len(items))
		titlePatterns[form] = make(map[string]*regexp.Regexp, len(items))
		numbers := make([]string, 0, len(items))
		seen := map[string]bool{}
		for _, it := range items {
			headingPatterns[form][patternKey(it)] = regexp.MustCompile(headingExpr(it))
			titlePatterns[form][patternKey(it)] = regexp.MustCompile(`(?i)` + titleExpr(it.Title))
			if !seen[it.Number] {
				seen[it.Number] = true
				numbers = append(numbers, it.Number)
			}
		}
		// Longer numbers first so "1A" is tried before "1".
		sort.Slice(numbers, func(i, j int) bool {
			if len(numbers[i]) != len(numbers[j]) {
				return len(numbers[i]) > len(numbers[j])
			}
			return numbers[i] < numbers[j]
		})
		quoted := make([]string, len(numbers))
		for i, n := range numbers {
			quoted[i] = regexp.QuoteMeta(n)
		}
		topLevelPatterns[form] = regexp.MustCompile(
			`(?i)^(?:part\s+(?:[ivx]+|\d+)\b[\s.,:;\-–—]*)?item\s+(` + strings.Join(quoted, "|") + `)\b`)
	}
}

func patternKey(it Item) string {
	return it.Part + "/" + it.ID
}

// headingExpr builds the heading matcher for one item: an optional part
// prefix, the item number in any common punctuation style, then optionally
// the canonical title.
func headingExpr(it Item) string {
	var b strings.Builder
	b.WriteString(`(?i)^(?:part\s+(?:[ivx]+|\d+)\b[\s.,:;\-–—]*)?item\s+`)
	b.WriteString(regexp.QuoteMeta(it.Number))
	b.WriteString(`\b[\s.,:;)\-–—]*`)
	if it.Title != "" {
		b.WriteString(`(?:`)
		b.WriteString(titleExpr(it.Title))
		b.WriteString(`)?`)
	}
	return b.String()
}

// titleExpr turns a canonical title into a forgiving word-sequence matcher:
// words separated by arbitrary whitespace, straight or curly apostrophes.
func titleExpr(title string) string {
	words := strings.Fields(title)
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = strings.ReplaceAll(regexp.QuoteMeta(w), `'`, `['’]`)
	}
	return strings.Join(parts, `\s+`)
}

// HeadingPattern returns the compiled heading matcher for an item. The
// pattern is anchored at the start of (whitespace-normalized) heading text.
func HeadingPattern(it Item, form FormType) *regexp.Regexp {
	return headingPatterns[form][patternKey(it)]
}

// TitlePattern returns a matcher for the item's canonical title alone, used
// to disambiguate forms where two parts reuse the same item number.
func TitlePattern(it Item, form FormType) *regexp.Regexp {
	return titlePatterns[form][patternKey(it)]
}

// TopLevelPattern returns a matcher that fires on any item heading of the
// form, with the item number in the first capture group.
func TopLevelPattern(form FormType) *regexp.Regexp {
	return topLevelPatterns[form]
}

// PartHeadingPattern returns the matcher for bare part dividers ("PART II").
func PartHeadingPattern() *regexp.Regexp {
	return partHeadingPattern
}

// AmbiguousNumber reports whether the item's number is shared by another
// item of the same form (10-Q reuses plain numbers across parts). Matching
// such an item by number alone is unsafe without part context or a title.
func AmbiguousNumber(form FormType, it Item) bool {
	n := 0
	for _, other := range itemsByForm[form] {
		if other.Number == it.Number {
			n++
		}
	}
	return n > 1
}
