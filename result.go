package cleanscore

import (
	"errors"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// Exit codes of a scoring process.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Result is the outcome of one report: a final score or a fatal error.
// Advisories carry signal-local failures that did not fail the report.
type Result struct {
	Score      float64
	Err        error
	Advisories []string
}

// Success returns a successful Result with the given final score.
func Success(score float64) Result {
	return Result{Score: score}
}

// Failure returns a failed Result. A nil err is replaced by a generic error.
func Failure(err error) Result {
	if err == nil {
		err = errors.New("unknown error")
	}
	return Result{Err: err}
}

// OK reports whether the result carries a score.
func (r Result) OK() bool { return r.Err == nil }

type successPayload struct {
	Score float64 `json:"score"`
}

type failurePayload struct {
	Error string `json:"error"`
}

// Payload returns the single-line JSON document for the result, without the
// trailing newline.
func (r Result) Payload() []byte {
	var v any = successPayload{Score: r.Score}
	if r.Err != nil {
		v = failurePayload{Error: r.Err.Error()}
	}
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(failurePayload{Error: err.Error()})
	}
	return b
}

// ExitCode returns ExitSuccess for a score and ExitFailure otherwise.
func (r Result) ExitCode() int {
	if r.Err != nil {
		return ExitFailure
	}
	return ExitSuccess
}

// Report writes the JSON payload as one line to w and returns the process
// exit code. A write failure turns a success into ExitFailure.
func (r Result) Report(w io.Writer) int {
	line := append(r.Payload(), '\n')
	if _, err := w.Write(line); err != nil {
		return ExitFailure
	}
	return r.ExitCode()
}
