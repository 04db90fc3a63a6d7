// Package pdf concatenates rendered PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Merger merges rendered pages into one document using pdfcpu. It implements
// crawler.DocumentMerger.
type Merger struct{}

// New returns a Merger.
func New() *Merger {
	return &Merger{}
}

// Merge concatenates docs in order into a single PDF. A single document is
// passed through untouched.
func (Merger) Merge(docs [][]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to merge")
	}
	if len(docs) == 1 {
		out := make([]byte, len(docs[0]))
		copy(out, docs[0])
		return out, nil
	}

	readers := make([]io.ReadSeeker, len(docs))
	for i, doc := range docs {
		readers[i] = bytes.NewReader(doc)
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, nil); err != nil {
		return nil, fmt.Errorf("pdfcpu merge: %w", err)
	}
	return buf.Bytes(), nil
}
