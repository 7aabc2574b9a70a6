package edgarseg

// Anchor delimits a half-open byte range [Start, End) into a decoded
// document fragment. Slicing the fragment with it yields an exact,
// unmodified substring of the input, so downstream structural parsing sees
// the document's own markup.
type Anchor struct {
	Start int
	End   int

	// Method names the resolution strategy that produced the anchor.
	Method string
}

// Slice returns the fragment window the anchor delimits.
func (a Anchor) Slice(text string) string {
	return text[a.Start:a.End]
}

// Valid reports whether the anchor lies within a text of length n.
func (a Anchor) Valid(n int) bool {
	return 0 <= a.Start && a.Start <= a.End && a.End <= n
}

// PreSeeker narrows a multi-megabyte document down to the byte range of a
// single section before structural parsing. The boolean is false when no
// strategy could locate the section; that is a normal outcome, not an
// error, and directs the caller to parse the full document instead.
type PreSeeker interface {
	Seek(text string, form FormType, item Item) (Anchor, bool)
}
