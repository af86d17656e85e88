package parse

import "strings"

var reasoningSentinels = [][2]string{
	{"<think>", "</think>"},
	{"<thinking>", "</thinking>"},
	{"<reasoning>", "</reasoning>"},
}

// StripReasoning drops a reasoning preamble. When a known open and close
// sentinel are both present, everything up to and including the last close
// sentinel is discarded. A lone sentinel leaves the text untouched.
func StripReasoning(raw string) string {
	cut := -1
	for _, pair := range reasoningSentinels {
		if !strings.Contains(raw, pair[0]) {
			continue
		}
		if end := strings.LastIndex(raw, pair[1]); end >= 0 {
			if e := end + len(pair[1]); e > cut {
				cut = e
			}
		}
	}
	if cut < 0 {
		return raw
	}
	return raw[cut:]
}
