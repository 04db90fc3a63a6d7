// Package session loads the browser session snapshot consumed by fetch and
// render operations. The snapshot uses the Playwright storage-state JSON
// layout and is treated as read-only for the whole run.
package session

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Cookie is one cookie entry from the storage-state file.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
}

// State is the parsed session snapshot.
type State struct {
	Cookies []Cookie `json:"cookies"`
}

// Load reads a storage-state file. A missing file yields an empty state, not
// an error: the run simply proceeds unauthenticated.
func Load(path string) (State, error) {
	if path == "" {
		return State{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("read session state %s: %w", path, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("parse session state %s: %w", path, err)
	}
	return state, nil
}

// HTTPCookies converts the snapshot into cookies usable by an HTTP client.
func (s State) HTTPCookies() []*http.Cookie {
	if len(s.Cookies) == 0 {
		return nil
	}
	out := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		cookie := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HttpOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			cookie.Expires = time.Unix(int64(c.Expires), 0)
		}
		out = append(out, cookie)
	}
	return out
}
