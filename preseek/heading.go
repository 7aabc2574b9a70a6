package preseek

import (
	"sort"
	"strings"

	"github.com/ebarkan/edgarseg"
	"golang.org/x/net/html"
)

// headBlock is one block-level element's accumulated direct text.
type headBlock struct {
	off       int
	text      string
	inLink    bool
	inTable   bool
	truncated bool
}

// seekHeading resolves the section by scanning block-level text in document
// order for the item's heading. Linked blocks are table-of-contents entries
// and never count; blocks inside tables are too unreliable to trust as a
// start, so a document whose headings all live in layout tables falls back
// to full parsing. The window ends at the next heading of a different item
// or at a part divider.
func (s *Seeker) seekHeading(text string, form edgarseg.FormType, item edgarseg.Item) (edgarseg.Anchor, bool) {
	maxLen := s.MaxHeadingLen
	if maxLen <= 0 {
		maxLen = DefaultMaxHeadingLen
	}
	blocks := scanBlocks(text)

	heading := edgarseg.HeadingPattern(item, form)
	title := edgarseg.TitlePattern(item, form)
	ambiguous := edgarseg.AmbiguousNumber(form, item)

	startIdx := -1
	part := ""
	for i, b := range blocks {
		ctx := part
		if p, ok := partDivider(b, maxLen); ok {
			part = p
			continue
		}
		if b.inLink || b.inTable || b.truncated || len(b.text) > maxLen {
			continue
		}
		if !heading.MatchString(b.text) {
			continue
		}
		if num, ok := topLevelNumber(b.text, form); !ok || num != item.Number {
			continue
		}
		if ambiguous && ctx != item.Part && !title.MatchString(b.text) {
			continue
		}
		if item.Part != "" && ctx != "" && ctx != item.Part {
			continue
		}
		startIdx = i
		break
	}
	if startIdx < 0 {
		return edgarseg.Anchor{}, false
	}

	end := len(text)
	for _, b := range blocks[startIdx+1:] {
		if b.inLink || b.truncated || len(b.text) > maxLen {
			continue
		}
		if _, ok := partDivider(b, maxLen); ok {
			end = b.off
			break
		}
		if num, ok := topLevelNumber(b.text, form); ok && num != item.Number {
			end = b.off
			break
		}
	}
	return edgarseg.Anchor{Start: blocks[startIdx].off, End: end, Method: MethodHeading}, true
}

// topLevelNumber extracts the item number opening the block text, rejecting
// decimal false positives such as "Item 7.50% Notes".
func topLevelNumber(text string, form edgarseg.FormType) (string, bool) {
	re := edgarseg.TopLevelPattern(form)
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", false
	}
	num := text[loc[2]:loc[3]]
	rest := text[loc[3]:]
	if len(rest) >= 2 && (rest[0] == '.' || rest[0] == ',') && rest[1] >= '0' && rest[1] <= '9' {
		return "", false
	}
	return num, true
}

// partDivider reports whether the block is a bare part divider ("PART II",
// "Part I — Financial Information") and returns the part in roman form. A
// line that continues into an item heading is not a divider.
func partDivider(b headBlock, maxLen int) (string, bool) {
	if b.inLink || b.truncated || len(b.text) > maxLen {
		return "", false
	}
	re := edgarseg.PartHeadingPattern()
	loc := re.FindStringIndex(b.text)
	if loc == nil || loc[0] != 0 {
		return "", false
	}
	rest := b.text[loc[1]:]
	if len(rest) >= 4 && strings.EqualFold(rest[:4], "item") {
		return "", false
	}
	fields := strings.Fields(b.text)
	if len(fields) < 2 {
		return "", false
	}
	return romanPart(fields[1]), true
}

// romanPart folds "1"/"i" style part spellings into "I" style.
func romanPart(s string) string {
	s = strings.TrimRight(strings.ToUpper(s), ".,:;-–—")
	switch s {
	case "1", "I":
		return "I"
	case "2", "II":
		return "II"
	case "3", "III":
		return "III"
	case "4", "IV":
		return "IV"
	}
	return s
}

// Block-level elements whose direct text is tested for headings.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "center": true,
}

// Elements whose text content is never document prose.
var suppressTags = map[string]bool{
	"script": true, "style": true, "title": true, "noscript": true,
}

// openBlock tracks one unfinished block during the scan.
type openBlock struct {
	tag       string
	off       int
	buf       strings.Builder
	inLink    bool
	inTable   bool
	truncated bool
}

func (b *openBlock) write(s string) {
	if b.buf.Len() >= maxBlockText {
		b.truncated = true
		return
	}
	b.buf.WriteString(s)
}

// scanBlocks tokenizes the document once, accumulating each block element's
// direct text. Nested blocks keep their text separate from their parents,
// which is what lets a table-of-contents cell be judged on its own. The
// result is sorted by byte offset.
func scanBlocks(text string) []headBlock {
	var blocks []headBlock
	var stack []*openBlock
	anchorDepth := 0
	tableDepth := 0
	suppress := 0

	finalize := func(b *openBlock) {
		t := edgarseg.NormalizeSpace(b.buf.String())
		if t == "" {
			return
		}
		blocks = append(blocks, headBlock{
			off: b.off, text: t,
			inLink: b.inLink, inTable: b.inTable, truncated: b.truncated,
		})
	}
	closeImplicit := func(incoming string) {
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if !implicitClose(top.tag, incoming) {
				return
			}
			finalize(top)
			stack = stack[:len(stack)-1]
		}
	}

	z := html.NewTokenizer(strings.NewReader(text))
	off := 0
	for {
		tt := z.Next()
		tokOff := off
		off += len(z.Raw())
		switch tt {
		case html.ErrorToken:
			for i := len(stack) - 1; i >= 0; i-- {
				finalize(stack[i])
			}
			sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].off < blocks[j].off })
			return blocks
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			href := ""
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				if string(k) == "href" {
					href = string(v)
				}
			}
			if tt == html.SelfClosingTagToken {
				if tag == "br" || tag == "hr" {
					if len(stack) > 0 {
						stack[len(stack)-1].write(" ")
					}
				}
				continue
			}
			switch {
			case blockTags[tag]:
				closeImplicit(tag)
				stack = append(stack, &openBlock{tag: tag, off: tokOff, inTable: tableDepth > 0})
			case tag == "table":
				closeImplicit(tag)
				tableDepth++
			case tag == "tr":
				closeImplicit(tag)
			case tag == "br", tag == "hr":
				closeImplicit(tag)
				if len(stack) > 0 {
					stack[len(stack)-1].write(" ")
				}
			case tag == "a":
				if href != "" {
					anchorDepth++
				}
			case suppressTags[tag]:
				suppress++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case blockTags[tag]:
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i].tag != tag {
						continue
					}
					for j := len(stack) - 1; j >= i; j-- {
						finalize(stack[j])
					}
					stack = stack[:i]
					break
				}
			case tag == "table":
				if tableDepth > 0 {
					tableDepth--
				}
			case tag == "a":
				if anchorDepth > 0 {
					anchorDepth--
				}
			case suppressTags[tag]:
				if suppress > 0 {
					suppress--
				}
			}
		case html.TextToken:
			if suppress > 0 || len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if anchorDepth > 0 {
				top.inLink = true
			}
			top.write(string(z.Text()))
		}
	}
}

// implicitClose reports whether an open element ends when the incoming tag
// starts, the way browsers close dangling paragraphs and table cells.
func implicitClose(top, incoming string) bool {
	switch top {
	case "p":
		switch incoming {
		case "p", "div", "li", "td", "th", "table", "tr", "ul", "ol",
			"h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "center", "hr":
			return true
		}
	case "li":
		return incoming == "li"
	case "td", "th":
		return incoming == "td" || incoming == "th" || incoming == "tr" || incoming == "table"
	}
	return false
}
