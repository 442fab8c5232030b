package search

import "strings"

// SplitLines splits content with one end-of-line policy for the whole file:
// CRLF if the content contains any CRLF, LF otherwise.
func SplitLines(content string) []string {
	if strings.Contains(content, "\r\n") {
		return strings.Split(content, "\r\n")
	}
	return strings.Split(content, "\n")
}
