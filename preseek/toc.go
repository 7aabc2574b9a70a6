package preseek

import (
	"strings"

	"github.com/ebarkan/edgarseg"
	"golang.org/x/net/html"
)

// tocLink is an internal hyperlink collected during the link pass.
type tocLink struct {
	// frag is the normalized href fragment ("#Item_1A" becomes "item1a").
	frag string

	// text is the normalized link label.
	text string
}

// seekTOC resolves the section through the document's own table of
// contents: find a same-document link labeled with the item, jump to the
// element carrying the matching id or name, and bound the window at the
// nearest resolvable target of any later item.
func (s *Seeker) seekTOC(text string, form edgarseg.FormType, item edgarseg.Item) (edgarseg.Anchor, bool) {
	links, targets := scanLinks(text)
	if len(links) == 0 || len(targets) == 0 {
		return edgarseg.Anchor{}, false
	}
	start, ok := resolveItem(links, targets, form, item)
	if !ok {
		return edgarseg.Anchor{}, false
	}
	end := len(text)
	for _, next := range edgarseg.NextItems(form, item) {
		if p, ok := resolveItem(links, targets, form, next); ok && p > start && p < end {
			end = p
		}
	}
	return edgarseg.Anchor{Start: start, End: end, Method: MethodTOC}, true
}

// resolveItem finds the document position of one item via the collected
// links: by href fragment first, by link label second. The position is the
// byte offset of the element the winning link's fragment targets.
func resolveItem(links []tocLink, targets map[string]int, form edgarseg.FormType, item edgarseg.Item) (int, bool) {
	key := item.AnchorKey()
	heading := edgarseg.HeadingPattern(item, form)
	title := edgarseg.TitlePattern(item, form)
	ambiguous := edgarseg.AmbiguousNumber(form, item)

	byText := -1
	for _, l := range links {
		pos, ok := targets[l.frag]
		if !ok {
			continue
		}
		if strings.HasSuffix(l.frag, key) {
			fp := fragPart(l.frag)
			switch {
			case fp != "" && fp == item.Part:
				return pos, true
			case fp == "" && (item.Part == "" || !ambiguous):
				return pos, true
			}
		}
		if byText >= 0 || !heading.MatchString(l.text) {
			continue
		}
		if !ambiguous || title.MatchString(l.text) || fragPart(l.frag) == item.Part {
			byText = pos
		}
	}
	if byText >= 0 {
		return byText, true
	}
	return 0, false
}

// fragPart extracts a part number from a normalized fragment such as
// "part2item1" or "partiiitem1", returned in roman form to match
// edgarseg.Item.Part. Empty when the fragment names no part.
func fragPart(frag string) string {
	i := strings.Index(frag, "part")
	if i < 0 {
		return ""
	}
	rest := frag[i+4:]
	switch {
	case strings.HasPrefix(rest, "iii") || strings.HasPrefix(rest, "3"):
		return "III"
	case strings.HasPrefix(rest, "ii") || strings.HasPrefix(rest, "2"):
		return "II"
	case strings.HasPrefix(rest, "i") || strings.HasPrefix(rest, "1"):
		return "I"
	}
	return ""
}

// scanLinks tokenizes the document once, keeping only link-like state: the
// label and fragment of every same-document link, and the byte offset of
// every element carrying an id or name attribute. Offsets come from
// accumulating raw token lengths, so they address the unmodified input.
func scanLinks(text string) ([]tocLink, map[string]int) {
	var links []tocLink
	targets := make(map[string]int)

	z := html.NewTokenizer(strings.NewReader(text))
	off := 0
	var label strings.Builder
	openFrag := ""
	open := false
	depth := 0
	for {
		tt := z.Next()
		tokOff := off
		off += len(z.Raw())
		switch tt {
		case html.ErrorToken:
			return links, targets
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			var href, id string
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				switch string(k) {
				case "href":
					href = string(v)
				case "id", "name":
					if id == "" {
						id = string(v)
					}
				}
			}
			if id != "" {
				if key := edgarseg.NormalizeAnchor(id); key != "" {
					if _, seen := targets[key]; !seen {
						targets[key] = tokOff
					}
				}
			}
			if tt == html.SelfClosingTagToken || string(name) != "a" {
				continue
			}
			if open {
				depth++
				continue
			}
			if strings.HasPrefix(href, "#") {
				openFrag = edgarseg.NormalizeAnchor(href)
				open = true
				depth = 0
				label.Reset()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) != "a" || !open {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			open = false
			if openFrag == "" {
				continue
			}
			links = append(links, tocLink{frag: openFrag, text: edgarseg.NormalizeSpace(label.String())})
		case html.TextToken:
			if open && label.Len() < maxBlockText {
				label.Write(z.Text())
			}
		}
	}
}
