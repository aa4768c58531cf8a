package httpx

import (
	"regexp"
)

//nolint:gochecknoglobals
var sensitiveDataPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)(Authorization: Bearer ).+?(\r)"),
	regexp.MustCompile(`(?s)("(?:[Aa]pi_?[Kk]ey|[Tt]oken)":\s?").+?(")`),
	// Base64 image payloads: data URIs and HF "inputs" blobs.
	regexp.MustCompile(`(data:image/[a-z+.-]+;base64,)[A-Za-z0-9+/=]{64,}()`),
	regexp.MustCompile(`("inputs":\s?")[A-Za-z0-9+/=]{256,}(")`),
}

// SensitiveDataMasker hides credentials and bulky image payloads in HTTP dumps.
type SensitiveDataMasker struct{}

func NewSensitiveDataMasker() SensitiveDataMasker {
	return SensitiveDataMasker{}
}

func (s SensitiveDataMasker) Mask(input []byte) []byte {
	for _, pattern := range sensitiveDataPatterns {
		input = pattern.ReplaceAll(input, []byte("${1}[MASKED]${2}"))
	}

	return input
}

// NopSensitiveDataMasker leaves dumps untouched.
type NopSensitiveDataMasker struct{}

func NewNopSensitiveDataMasker() NopSensitiveDataMasker {
	return NopSensitiveDataMasker{}
}

func (NopSensitiveDataMasker) Mask(input []byte) []byte {
	return input
}
