package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertHeadingsAndText(t *testing.T) {
	html := []byte("<html><body><h1>Title</h1><p>Some <strong>bold</strong> text.</p></body></html>")

	md, err := New().Convert(html, "https://example.com/docs")
	require.NoError(t, err)

	text := string(md)
	assert.Contains(t, text, "# Title")
	assert.Contains(t, text, "**bold**")
}

func TestConvertAbsolutizesRelativeLinks(t *testing.T) {
	html := []byte(`<html><body><a href="/docs/a">A</a></body></html>`)

	md, err := New().Convert(html, "https://example.com/docs")
	require.NoError(t, err)

	assert.Contains(t, string(md), "https://example.com/docs/a")
}

func TestConvertWithoutUsableBase(t *testing.T) {
	html := []byte("<p>plain</p>")

	md, err := New().Convert(html, "not a url")
	require.NoError(t, err)
	assert.Contains(t, string(md), "plain")
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "https://example.com", domainOf("https://example.com/docs/a"))
	assert.Equal(t, "", domainOf("/relative/only"))
	assert.Equal(t, "", domainOf("://bad"))
}
