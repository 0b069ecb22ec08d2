package state

import (
	"strings"
)

// MaxArrayIndex is the largest array index a write may address. Writes past it
// are ignored.
const MaxArrayIndex = 1<<16 - 1

// SplitPath splits a '/'-delimited path into segments. Empty segments are
// dropped, so "", "/" and "//" all address the root.
func SplitPath(path string) []string {
	if path == "" || path == "/" {
		return nil
	}
	parts := strings.Split(path, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// JoinPath builds an absolute path from segments. No segments yields "/".
func JoinPath(segs ...string) string {
	if len(segs) == 0 {
		return "/"
	}
	return "/" + strings.Join(segs, "/")
}

// Normalize returns the canonical absolute form of path.
func Normalize(path string) string {
	return JoinPath(SplitPath(path)...)
}

// parseIndex reads an all-digit segment as a decimal array index, so "01"
// addresses element 1. Values past MaxArrayIndex come back as
// MaxArrayIndex+1, which reads miss and writes ignore.
func parseIndex(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		if n <= MaxArrayIndex {
			n = n*10 + int(c-'0')
		}
	}
	if n > MaxArrayIndex {
		n = MaxArrayIndex + 1
	}
	return n, true
}
