package headless

import (
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitebind/sitebind/internal/session"
)

func TestCookieParams(t *testing.T) {
	state := session.State{Cookies: []session.Cookie{
		{
			Name:     "sessionid",
			Value:    "abc123",
			Domain:   ".example.com",
			Path:     "/",
			Expires:  1893456000,
			HTTPOnly: true,
			Secure:   true,
		},
		{Name: "theme", Value: "dark", Domain: "docs.example.com", Expires: -1},
	}}

	params := CookieParams(state)
	require.Len(t, params, 2)

	first := params[0]
	assert.Equal(t, "sessionid", first.Name)
	assert.Equal(t, "abc123", first.Value)
	assert.Equal(t, ".example.com", first.Domain)
	assert.True(t, first.HTTPOnly)
	assert.True(t, first.Secure)
	require.NotNil(t, first.Expires)
	assert.Equal(t, time.Unix(1893456000, 0).Unix(), time.Time(*first.Expires).Unix())

	assert.Nil(t, params[1].Expires, "session cookies carry no expiry")
}

func TestCookieParamsEmpty(t *testing.T) {
	assert.Nil(t, CookieParams(session.State{}))
}

func TestResponseMetaDefaultsToOK(t *testing.T) {
	m := newResponseMeta()
	assert.Equal(t, 200, m.status())
}

func TestResponseMetaKeepsFirstDocumentStatus(t *testing.T) {
	m := newResponseMeta()

	m.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeDocument,
		Response: &network.Response{Status: 404},
	})
	m.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeDocument,
		Response: &network.Response{Status: 200},
	})
	// Subresource statuses never override the document status.
	m.captureEvent(&network.EventResponseReceived{
		Type:     network.ResourceTypeImage,
		Response: &network.Response{Status: 500},
	})

	assert.Equal(t, 404, m.status())
}
