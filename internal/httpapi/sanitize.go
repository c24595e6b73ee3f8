package httpapi

import "regexp"

// Log lines can mention topic ARNs and AWS credentials pulled from the
// environment; redact the obvious ones before exposing lines over the API.
var credentialPatterns = []struct {
	regex       *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)password=[^\s]+`), "password=[redacted]"},
	{regexp.MustCompile(`(?i)secret=[^\s]+`), "secret=[redacted]"},
	{regexp.MustCompile(`(?i)token=[^\s]+`), "token=[redacted]"},
	{regexp.MustCompile(`(?i)(aws_)?(access|secret|session)_key[^\s]*=\S+`), "$1$2_key=[redacted]"},
	{regexp.MustCompile(`arn:aws:sns:[^\s]+`), "arn:aws:sns:[redacted]"},
	{regexp.MustCompile(`(?i)authorization:\s*bearer\s+[a-z0-9\-._~+/=]+`), "authorization: Bearer [redacted]"},
	{regexp.MustCompile(`(?i)https?://[^:@\s]+:[^@\s]+@`), "https://[redacted]:[redacted]@"},
}

// SanitizeLogLines performs minimal redaction on log lines for safe exposure.
func SanitizeLogLines(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		for _, p := range credentialPatterns {
			l = p.regex.ReplaceAllString(l, p.replacement)
		}
		out[i] = l
	}
	return out
}
