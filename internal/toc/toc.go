// Package toc derives addon TOC "## Interface" numbers from client version strings.
package toc

import (
	"strconv"
	"strings"
)

// NotAvailable marks a version string that cannot be encoded.
const NotAvailable = "N/A"

// Interface encodes a dotted "major.minor.patch[.build]" version as the
// numeric interface identifier major*10000 + minor*100 + patch.
// Strings with fewer than three components yield NotAvailable.
func Interface(versionName string) string {
	if versionName == "" {
		return NotAvailable
	}
	parts := strings.Split(versionName, ".")
	if len(parts) < 3 {
		return NotAvailable
	}

	major := leadingInt(parts[0])
	minor := leadingInt(parts[1])
	patch := leadingInt(parts[2])

	return strconv.FormatInt(major*10000+minor*100+patch, 10)
}

// CardID identifies one selectable (product, region, version) triple.
func CardID(product, region, versionName string) string {
	return product + "-" + region + "-" + versionName
}

// leadingInt reads an optional sign and the leading run of decimal digits,
// ignoring surrounding whitespace. Anything without such a prefix is 0.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
