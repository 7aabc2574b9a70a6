package edgar

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// FilingIndex is the parsed XML directory index of one accession. It lists
// the files EDGAR serves for the filing and is a cheap way to spot-check a
// container manifest without downloading the container itself.
type FilingIndex struct {
	Accession string
	Directory string
	Documents []IndexDocument
}

// IndexDocument is one file entry of a filing index.
type IndexDocument struct {
	Name         string
	Href         string
	Size         int64
	LastModified string
}

// Document returns the entry with the given file name, or nil.
func (idx *FilingIndex) Document(name string) *IndexDocument {
	for i := range idx.Documents {
		if idx.Documents[i].Name == name {
			return &idx.Documents[i]
		}
	}
	return nil
}

// FetchIndex downloads and parses the accession's XML directory index.
func (c *Client) FetchIndex(ctx context.Context, accession, cik string) (*FilingIndex, error) {
	dashed, err := NormalizeAccession(accession)
	if err != nil {
		return nil, err
	}

	url, err := c.IndexURL(accession, cik)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	idx, err := parseIndex(body)
	if err != nil {
		return nil, err
	}
	idx.Accession = dashed
	return idx, nil
}

// parseIndex reads the <directory> document EDGAR serves as index.xml.
// The index declares iso-8859-1, so decoding needs a charset reader.
func parseIndex(data []byte) (*FilingIndex, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing index XML: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "directory" {
		return nil, fmt.Errorf("index XML has no directory element")
	}

	idx := &FilingIndex{
		Directory: childText(root, "name"),
	}

	for _, item := range root.SelectElements("item") {
		entry := IndexDocument{
			Name:         childText(item, "name"),
			Href:         childText(item, "href"),
			LastModified: childText(item, "last-modified"),
		}
		if entry.Name == "" {
			continue
		}
		if size := childText(item, "size"); size != "" {
			if n, err := strconv.ParseInt(size, 10, 64); err == nil {
				entry.Size = n
			}
		}
		idx.Documents = append(idx.Documents, entry)
	}

	return idx, nil
}

func childText(el *etree.Element, name string) string {
	if c := el.SelectElement(name); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}
