// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package sparql

import "strings"

// normalizeNewlines turns CRLF line endings, which SPARQL CSV mandates, into
// plain newlines.
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// ParseCandidates reads a single column result: the first line is the header
// and is dropped, every other non-empty line is a candidate, in order.
// Values are not trimmed nor dequoted.
func ParseCandidates(raw string) []string {
	lines := strings.Split(raw, "\n")
	ret := make([]string, 0, len(lines)-1)

	for _, line := range lines[1:] {
		if line != "" {
			ret = append(ret, line)
		}
	}

	return ret
}
