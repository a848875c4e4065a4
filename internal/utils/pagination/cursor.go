package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidToken is returned for a token Decode cannot parse.
var ErrInvalidToken = errors.New("invalid pagination token")

// Cursor is the opaque pagination state we encode/decode.
// Name + ID establish a stable position in a list ordered by (Name, ID).
type Cursor struct {
	Name string `json:"n"`
	ID   string `json:"id,omitempty"`
}

// IsZero reports whether c points at the first page.
func (c Cursor) IsZero() bool { return c.Name == "" && c.ID == "" }

func (c Cursor) less(o Cursor) bool {
	if c.Name != o.Name {
		return c.Name < o.Name
	}
	return c.ID < o.ID
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidToken
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, ErrInvalidToken
	}
	return c, nil
}

// Page returns up to limit items positioned after token, plus the token of
// the next page ("" on the last page). items must already be sorted by
// keyOf ascending. limit <= 0 returns everything after the cursor.
func Page[T any](items []T, keyOf func(T) Cursor, token string, limit int) ([]T, string, error) {
	after, err := Decode(token)
	if err != nil {
		return nil, "", err
	}

	start := 0
	if !after.IsZero() {
		start = len(items)
		for i, it := range items {
			if after.less(keyOf(it)) {
				start = i
				break
			}
		}
	}
	rest := items[start:]

	if limit <= 0 || len(rest) <= limit {
		return rest, "", nil
	}

	page := rest[:limit]
	next, err := Encode(keyOf(page[limit-1]))
	if err != nil {
		return nil, "", err
	}
	return page, next, nil
}
