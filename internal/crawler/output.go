package crawler

import (
	"bytes"
	"fmt"
)

// textSeparator is written between pages inside one markdown part.
const textSeparator = "\n\n========================================\n\n"

// maxDocsPerPDFPart caps how many rendered documents one PDF part may hold;
// merging is memory intensive, so parts are bounded by count as well as size.
const maxDocsPerPDFPart = 50

// OutputUnit is an in-progress accumulation buffer for one output part. The
// reassembler drives it through append/overflow/finalize cycles without
// knowing whether the part is concatenated text or a merged document.
type OutputUnit interface {
	// Append adds one page's content to the unit.
	Append(content []byte)
	// WouldOverflow reports whether appending add more bytes should close
	// the current part first. An empty unit never overflows: a single
	// oversized item is written whole to its own part.
	WouldOverflow(add int64) bool
	// Empty reports whether nothing has been appended since the last reset.
	Empty() bool
	// Size returns the accumulated byte count.
	Size() int64
	// Finalize materializes the part's bytes.
	Finalize() ([]byte, error)
	// Reset clears the unit so a new part can begin.
	Reset()
	// Ext returns the part file extension, including the dot.
	Ext() string
}

// textUnit concatenates markdown pages separated by textSeparator.
type textUnit struct {
	buf      bytes.Buffer
	maxBytes int64
	count    int
}

// NewTextUnit returns an OutputUnit that binds markdown text parts.
func NewTextUnit(maxBytes int64) OutputUnit {
	return &textUnit{maxBytes: maxBytes}
}

func (u *textUnit) Append(content []byte) {
	u.buf.Write(content)
	u.buf.WriteString(textSeparator)
	u.count++
}

func (u *textUnit) WouldOverflow(add int64) bool {
	if u.count == 0 {
		return false
	}
	return u.Size()+add+int64(len(textSeparator)) > u.maxBytes
}

func (u *textUnit) Empty() bool { return u.count == 0 }

func (u *textUnit) Size() int64 { return int64(u.buf.Len()) }

func (u *textUnit) Finalize() ([]byte, error) {
	out := make([]byte, u.buf.Len())
	copy(out, u.buf.Bytes())
	return out, nil
}

func (u *textUnit) Reset() {
	u.buf.Reset()
	u.count = 0
}

func (u *textUnit) Ext() string { return ".md" }

// pdfUnit collects rendered documents and merges them on finalize. The
// merged document cannot be split mid-structure, so overflow closes the
// whole part before the next document opens a new one.
type pdfUnit struct {
	docs     [][]byte
	size     int64
	maxBytes int64
	maxDocs  int
	merger   DocumentMerger
}

// NewPDFUnit returns an OutputUnit that binds rendered pages into one
// paginated document per part.
func NewPDFUnit(maxBytes int64, merger DocumentMerger) OutputUnit {
	return &pdfUnit{
		maxBytes: maxBytes,
		maxDocs:  maxDocsPerPDFPart,
		merger:   merger,
	}
}

func (u *pdfUnit) Append(content []byte) {
	u.docs = append(u.docs, content)
	u.size += int64(len(content))
}

func (u *pdfUnit) WouldOverflow(add int64) bool {
	if len(u.docs) == 0 {
		return false
	}
	return u.size+add > u.maxBytes || len(u.docs) >= u.maxDocs
}

func (u *pdfUnit) Empty() bool { return len(u.docs) == 0 }

func (u *pdfUnit) Size() int64 { return u.size }

func (u *pdfUnit) Finalize() ([]byte, error) {
	merged, err := u.merger.Merge(u.docs)
	if err != nil {
		return nil, fmt.Errorf("merge %d documents: %w", len(u.docs), err)
	}
	return merged, nil
}

func (u *pdfUnit) Reset() {
	u.docs = nil
	u.size = 0
}

func (u *pdfUnit) Ext() string { return ".pdf" }
