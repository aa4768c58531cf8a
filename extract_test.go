package cleanscore

import (
	"errors"
	"testing"
)

func TestExtractScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    string
		want    float64
		wantErr bool
	}{
		// Well-formed answers.
		{name: "strict object", resp: `{"score": 0.85}`, want: 0.85},
		{name: "surrounding whitespace", resp: "  {\"score\":0.4}\n", want: 0.4},
		{name: "integer one", resp: `{"score": 1}`, want: 1},

		// Malformed but recoverable.
		{name: "markdown fence", resp: "```json\n{\"score\": 0.6}\n```", want: 0.6},
		{name: "unquoted key", resp: `{score: 0.3}`, want: 0.3},
		{name: "score as string", resp: `{"score": "0.9"}`, want: 0.9},
		{name: "prose with number", resp: "The score is 0.72 because the floor is sticky.", want: 0.72},
		{name: "other key", resp: `{"rating": 0.4}`, want: 0.4},
		{name: "leading dot", resp: ".5", want: 0.5},

		// Out of range values are clamped.
		{name: "bare integer above one", resp: "7", want: 1},
		{name: "object above one", resp: `{"score": 1.5}`, want: 1},
		{name: "negative", resp: "-0.5", want: 0},

		// No number at all.
		{name: "no number", resp: "I cannot rate this.", wantErr: true},
		{name: "empty", resp: "", wantErr: true},
		{name: "null score", resp: `{"score": null}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ExtractScore(tc.resp)
			if tc.wantErr {
				if !errors.Is(err, ErrNoNumericScore) {
					t.Fatalf("ExtractScore(%q) error = %v, want ErrNoNumericScore", tc.resp, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractScore(%q) unexpected error: %v", tc.resp, err)
			}
			if got != tc.want {
				t.Errorf("ExtractScore(%q) = %v, want %v", tc.resp, got, tc.want)
			}
		})
	}
}
