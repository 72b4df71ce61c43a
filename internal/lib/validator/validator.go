// Package validator classifies user supplied strings (hostnames, email
// addresses, web urls) and cleans free text before it is stored.
package validator

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/unicode/rangetable"

	"wishlist/internal/lib/errs"
)

const (
	DefaultMaxLength = 256

	maxHostnameLength = 255
	maxLabelLength    = 63
)

var (
	// forbidden holds the control, format, surrogate, private use, line and
	// paragraph separator and combining mark categories.
	forbidden = rangetable.Merge(
		unicode.Cc, unicode.Cf, unicode.Cs, unicode.Co,
		unicode.Zl, unicode.Zp,
		unicode.Mn, unicode.Mc, unicode.Me,
	)

	// assigned is every rune that belongs to some assigned general category;
	// anything outside it is Cn.
	assigned = mergeCategories()
)

// mergeCategories merges the two-letter categories except Cn. Newer unicode
// tables list Cn itself, and the one-letter C covers it.
func mergeCategories() *unicode.RangeTable {
	tables := make([]*unicode.RangeTable, 0, len(unicode.Categories))
	for name, t := range unicode.Categories {
		if len(name) != 2 || name == "Cn" {
			continue
		}
		tables = append(tables, t)
	}
	return rangetable.Merge(tables...)
}

func isForbidden(r rune) bool {
	return unicode.Is(forbidden, r) || !unicode.Is(assigned, r)
}

// Sanitize NFC-normalizes s and drops forbidden runes. Composition runs first
// so that precomposed letters survive while stray combining marks do not.
func Sanitize(s string) string {
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if isForbidden(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeWords truncates s to maxLen code points, trims surrounding
// whitespace and sanitizes what is left.
func NormalizeWords(s string, maxLen int) string {
	if maxLen >= 0 && utf8.RuneCountInString(s) > maxLen {
		s = string([]rune(s)[:maxLen])
	}
	return Sanitize(strings.TrimSpace(s))
}

func Normalize(s string) string {
	return NormalizeWords(s, DefaultMaxLength)
}

func IsValidHostname(s string) bool {
	if s == "" || len(s) > maxHostnameLength {
		return false
	}
	s = strings.TrimSuffix(s, ".")

	for _, label := range strings.Split(s, ".") {
		if !isValidLabel(label) {
			return false
		}
	}
	return true
}

func isValidLabel(label string) bool {
	if len(label) == 0 || len(label) > maxLabelLength {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if !isASCIIAlnum(c) && c != '-' {
			return false
		}
	}
	return true
}

func isASCIIAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// IsEmail does a shallow syntactic check: one '@', a local part that starts
// and ends with an ASCII letter or digit, and a valid hostname after it.
func IsEmail(s string) bool {
	parts := strings.Split(Normalize(s), "@")
	if len(parts) != 2 {
		return false
	}
	local, domain := parts[0], parts[1]

	return isValidLocalPart(local) && IsValidHostname(domain)
}

func isValidLocalPart(local string) bool {
	if local == "" {
		return false
	}
	return isASCIIAlnum(local[0]) && isASCIIAlnum(local[len(local)-1])
}

// IsURL reports whether s is an http(s) url with a plausible hostname. A
// missing scheme is read as http.
func IsURL(s string) bool {
	_, ok := parseWebURL(s)
	return ok
}

func parseWebURL(s string) (*url.URL, bool) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, false
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.User != nil || u.Opaque != "" {
		return nil, false
	}
	if !IsValidHostname(u.Hostname()) {
		return nil, false
	}
	return u, true
}

// NormalizeURL lower-cases the host of a valid web url.
func NormalizeURL(s string) (string, error) {
	u, ok := parseWebURL(s)
	if !ok {
		return "", errs.InvalidParameter("Not a URL: cannot normalize")
	}
	u.Host = strings.ToLower(u.Host)

	return u.String(), nil
}
