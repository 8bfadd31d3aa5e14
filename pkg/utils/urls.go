package utils

import (
	"net/url"
	"strings"
)

// DecorateURL appends the `filename` and `filetype` query parameters every
// download URL carries, regardless of backend. The filetype is the substring
// after the asset name's last dot.
func DecorateURL(raw, name string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("filename", name)
	q.Set("filetype", FileTypeOf(name))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// MatchName reports whether an asset name passes a listing filter. An empty
// substring matches everything; otherwise plain containment applies.
func MatchName(name, substring string) bool {
	return substring == "" || strings.Contains(name, substring)
}
