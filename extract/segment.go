package extract

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ebarkan/edgarseg"
)

// Segmenter defaults. The word ceiling proxies a downstream token budget;
// the character ceiling bounds pathological whitespace-poor text.
const (
	DefaultMaxWords = 350
	DefaultMaxChars = 2000
	DefaultMinChars = 25
)

// Segmenter splits collected section content into length-bounded segments.
// The zero value uses the defaults. It accumulates sentences until either
// ceiling is hit, preferring paragraph and list-item boundaries over
// mid-sentence splits, and never merges text across a breadcrumb change.
type Segmenter struct {
	MaxWords int
	MaxChars int
	MinChars int
}

func (s Segmenter) limits() (maxWords, maxChars, minChars int) {
	maxWords, maxChars, minChars = s.MaxWords, s.MaxChars, s.MinChars
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	return maxWords, maxChars, minChars
}

// crossRefPattern recognizes a block that is nothing but a pointer to
// another section of the same filing, with the target number captured.
var crossRefPattern = regexp.MustCompile(`(?i)^(?:see|refer\s+to|incorporated\s+(?:herein\s+)?by\s+reference\s+(?:in|to|from))\s+(?:part\s+[ivx]+\s*,?\s*)?item\s+(\d{1,2}(?:\.\d{2})?[a-c]?)\b`)

const maxCrossRefLen = 300

// Segment converts content nodes into the final ordered segment list.
// Indices are contiguous from zero after short segments are dropped.
func (s Segmenter) Segment(content *Content) []edgarseg.Segment {
	maxWords, maxChars, minChars := s.limits()

	var segs []edgarseg.Segment
	var parts []string
	var words, chars int
	var anc []string

	flush := func() {
		if len(parts) == 0 {
			return
		}
		text := strings.Join(parts, " ")
		segs = append(segs, edgarseg.Segment{
			Text:             text,
			WordCount:        edgarseg.CountWords(text),
			CharCount:        utf8.RuneCountInString(text),
			Ancestors:        anc,
			ParentSubsection: anc[len(anc)-1],
		})
		parts, words, chars = nil, 0, 0
	}

	for _, node := range content.Nodes {
		if !slices.Equal(anc, node.Ancestors) {
			flush()
			anc = node.Ancestors
		}
		if target, ok := crossRef(node.Text); ok {
			flush()
			segs = append(segs, edgarseg.Segment{
				IsCrossRef:       true,
				CrossRefTarget:   target,
				Ancestors:        node.Ancestors,
				ParentSubsection: node.Ancestors[len(node.Ancestors)-1],
			})
			continue
		}

		// Prefer closing the open segment at the node boundary when the
		// whole node would not fit.
		nodeWords := edgarseg.CountWords(node.Text)
		nodeChars := utf8.RuneCountInString(node.Text)
		if chars > 0 && (chars+nodeChars+1 > maxChars || words+nodeWords > maxWords) {
			flush()
		}

		for _, piece := range splitPieces(node) {
			pw := edgarseg.CountWords(piece)
			pc := utf8.RuneCountInString(piece)
			join := 0
			if chars > 0 {
				join = 1
			}
			if chars > 0 && (chars+pc+join > maxChars || words+pw > maxWords) {
				flush()
			}
			if pc > maxChars {
				flush()
				for _, chunk := range hardSplit(piece, maxChars) {
					parts = append(parts, chunk)
					flush()
				}
				continue
			}
			parts = append(parts, piece)
			words += pw
			chars += pc + join
		}
	}
	flush()

	return reindex(dropShort(segs, minChars))
}

// dropShort removes segments under the minimum length. A lone short
// segment survives so a thin but real section still yields its content.
// Cross-reference placeholders are length-exempt.
func dropShort(segs []edgarseg.Segment, minChars int) []edgarseg.Segment {
	contentCount := 0
	for _, g := range segs {
		if !g.IsCrossRef {
			contentCount++
		}
	}
	kept := segs[:0]
	for _, g := range segs {
		if g.IsCrossRef || g.CharCount >= minChars || contentCount == 1 {
			kept = append(kept, g)
		}
	}
	return kept
}

func reindex(segs []edgarseg.Segment) []edgarseg.Segment {
	for i := range segs {
		segs[i].Index = i
	}
	return segs
}

func crossRef(text string) (string, bool) {
	if len(text) > maxCrossRefLen {
		return "", false
	}
	m := crossRefPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return "item" + edgarseg.NormalizeAnchor(m[1]), true
}

// splitPieces cuts a node's text into accumulation units: table rows keep
// their line boundaries, prose splits into sentences.
func splitPieces(node ContentNode) []string {
	if node.Kind == edgarseg.NodeTable {
		rows := strings.Split(node.Text, "\n")
		out := rows[:0]
		for _, r := range rows {
			if r = strings.TrimSpace(r); r != "" {
				out = append(out, r)
			}
		}
		return out
	}
	return splitSentences(node.Text)
}

// splitSentences cuts prose after terminal punctuation followed by spacing
// and a sentence-like opener. Common abbreviations and decimal numbers do
// not split.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		// Trailing close-quotes and parens stay with the sentence.
		j := i + 1
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if r == '"' || r == '\'' || r == ')' || r == '”' || r == '’' {
				j += size
				continue
			}
			break
		}
		if j >= len(text) {
			break
		}
		if text[j] != ' ' {
			continue
		}
		k := j
		for k < len(text) && text[k] == ' ' {
			k++
		}
		if k >= len(text) {
			break
		}
		r, _ := utf8.DecodeRuneInString(text[k:])
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) && r != '(' && r != '"' && r != '“' {
			continue
		}
		if c == '.' && isAbbreviation(text[start:i+1]) {
			continue
		}
		if piece := strings.TrimSpace(text[start:j]); piece != "" {
			out = append(out, piece)
		}
		start = k
		i = k - 1
	}
	if piece := strings.TrimSpace(text[start:]); piece != "" {
		out = append(out, piece)
	}
	return out
}

// isAbbreviation reports whether the text's final word is an abbreviation
// whose period does not end a sentence.
func isAbbreviation(prefix string) bool {
	word := prefix
	if i := strings.LastIndexByte(prefix, ' '); i >= 0 {
		word = prefix[i+1:]
	}
	switch strings.ToLower(word) {
	case "inc.", "co.", "corp.", "ltd.", "no.", "nos.", "u.s.", "mr.",
		"mrs.", "ms.", "dr.", "vs.", "st.", "jr.", "sr.", "e.g.", "i.e.",
		"approx.", "dept.", "seq.":
		return true
	}
	// Single-initial names: "John D. Rockefeller".
	return len(word) == 2 && word[1] == '.' && word[0] >= 'A' && word[0] <= 'Z'
}

// hardSplit cuts one oversized sentence at word boundaries into chunks of
// at most maxChars runes. A single overlong word stays whole.
func hardSplit(piece string, maxChars int) []string {
	words := strings.Fields(piece)
	var chunks []string
	var b []string
	n := 0
	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if n > 0 && n+1+wl > maxChars {
			chunks = append(chunks, strings.Join(b, " "))
			b, n = nil, 0
		}
		b = append(b, w)
		if n > 0 {
			n++
		}
		n += wl
	}
	if len(b) > 0 {
		chunks = append(chunks, strings.Join(b, " "))
	}
	return chunks
}
