package tower

import (
	"net/url"
	"strings"
)

// JoinPath joins base and sub with exactly one slash between them, whether or
// not either side already carries one. Dot segments, queries and fragments
// are left alone. An empty sub returns base unchanged.
func JoinPath(base, sub string) string {
	if sub == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(sub, "/")
}

// withSubPath returns a copy of base whose path has sub appended.
func withSubPath(base *url.URL, sub string) *url.URL {
	u := *base
	if base.User != nil {
		user := *base.User
		u.User = &user
	}
	if sub == "" {
		return &u
	}

	u.Path = JoinPath(base.Path, sub)
	if base.RawPath != "" {
		u.RawPath = JoinPath(base.RawPath, sub)
	}
	return &u
}
