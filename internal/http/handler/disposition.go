package handler

import (
	"net/url"
	"strings"
)

// contentDisposition builds an attachment header that carries name twice: an ASCII
// fallback for old clients and the exact UTF-8 name percent-encoded per RFC 6266/5987.
func contentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	if strings.Trim(fallback, "_") == "" {
		fallback = "download"
	}
	encoded := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return `attachment; filename="` + fallback + `"; filename*=UTF-8''` + encoded
}
