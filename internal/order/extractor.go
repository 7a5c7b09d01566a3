package order

import "regexp"

// Order references look like "d/482" anywhere in the message body. The
// letter is case-insensitive and only the first match counts.
var orderIDPattern = regexp.MustCompile(`(?i)d/(\d+)`)

// ExtractOrderID returns the digits of the first order reference found in
// text, or ok=false when the text contains none. Pure function.
func ExtractOrderID(text string) (string, bool) {
	m := orderIDPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
