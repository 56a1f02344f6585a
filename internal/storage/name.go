package storage

import (
	"fmt"
	"path"
	"strings"
)

// CleanName normalizes an untrusted client name into a relative, slash-separated name.
// Names that are empty, absolute, contain NUL bytes or any ".." segment are rejected
// with ErrUnsafePath. Backslashes are treated as separators.
func CleanName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnsafePath)
	}
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: name contains NUL", ErrUnsafePath)
	}

	n := strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(n, "/") || hasVolume(n) {
		return "", fmt.Errorf("%w: absolute name", ErrUnsafePath)
	}
	for _, seg := range strings.Split(n, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: parent reference", ErrUnsafePath)
		}
	}

	n = path.Clean(n)
	if n == "." || n == "/" {
		return "", fmt.Errorf("%w: name has no file component", ErrUnsafePath)
	}
	return n, nil
}

// hasVolume reports a Windows drive prefix such as "C:".
func hasVolume(n string) bool {
	if len(n) < 2 || n[1] != ':' {
		return false
	}
	c := n[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
