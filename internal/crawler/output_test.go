package crawler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextUnitSeparator(t *testing.T) {
	u := NewTextUnit(1 << 20)

	u.Append([]byte("page one"))
	u.Append([]byte("page two"))

	data, err := u.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "page one"+textSeparator+"page two"+textSeparator, string(data))
}

func TestTextUnitOverflow(t *testing.T) {
	u := NewTextUnit(200)

	assert.False(t, u.WouldOverflow(1000), "empty unit accepts an oversized item")

	// One 40-byte page plus its separator occupies 84 bytes.
	u.Append(bytes.Repeat([]byte("x"), 40))
	assert.False(t, u.WouldOverflow(10))
	assert.True(t, u.WouldOverflow(80), "separator overhead counts toward the limit")
}

func TestTextUnitReset(t *testing.T) {
	u := NewTextUnit(100)
	u.Append([]byte("content"))
	require.False(t, u.Empty())

	u.Reset()
	assert.True(t, u.Empty())
	assert.Equal(t, int64(0), u.Size())
}

// concatMerger joins documents for tests; real merging is exercised in the
// pdf package.
type concatMerger struct{}

func (concatMerger) Merge(docs [][]byte) ([]byte, error) {
	return bytes.Join(docs, nil), nil
}

func TestPDFUnitByteOverflow(t *testing.T) {
	u := NewPDFUnit(100, concatMerger{})

	assert.False(t, u.WouldOverflow(1000), "empty unit accepts an oversized document")

	u.Append(bytes.Repeat([]byte("p"), 60))
	assert.False(t, u.WouldOverflow(30))
	assert.True(t, u.WouldOverflow(60))
}

func TestPDFUnitDocCountCap(t *testing.T) {
	u := NewPDFUnit(1<<30, concatMerger{})

	for i := 0; i < maxDocsPerPDFPart; i++ {
		assert.False(t, u.WouldOverflow(1))
		u.Append([]byte("d"))
	}
	assert.True(t, u.WouldOverflow(1), "doc count caps the part even under the byte limit")
}

func TestPDFUnitFinalizeMerges(t *testing.T) {
	u := NewPDFUnit(1<<20, concatMerger{})
	u.Append([]byte("ab"))
	u.Append([]byte("cd"))

	data, err := u.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))
	assert.Equal(t, ".pdf", u.Ext())
}
