// Package urlnorm turns decoded payloads that look like URLs into text a
// browser can follow.
package urlnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var urlPattern = regexp.MustCompile(`(ftp|http|https)://(\w+:{0,1}\w*@)?(\S+)(:[0-9]+)?(/|/([\w#!:.?+=&%@!\-/]))?`)

// IsURL reports whether s contains something shaped like an ftp or http(s) URL.
func IsURL(s string) bool {
	return urlPattern.MatchString(s)
}

// Normalize renders payload as text. Valid UTF-8 is returned unchanged.
// Otherwise the bytes are read as Latin-1; a URL is then returned in
// escaped form, with every byte outside the escape-safe set written as %XX,
// so it stays well formed. Anything else is returned as Latin-1 text.
func Normalize(payload []byte) string {
	if utf8.Valid(payload) {
		return string(payload)
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(payload)
	if err != nil {
		// Latin-1 maps every byte, so this is unreachable in practice.
		return string(payload)
	}
	if !IsURL(string(text)) {
		return string(text)
	}
	return escape(payload)
}

const upperHex = "0123456789ABCDEF"

// escape percent-encodes every byte except ASCII letters, digits and @*_+-./
func escape(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for _, c := range b {
		if escapeSafe(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperHex[c>>4])
		sb.WriteByte(upperHex[c&0xF])
	}
	return sb.String()
}

func escapeSafe(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("@*_+-./", c) >= 0
}
