package cleanscore

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// numericLiteralRe finds the first decimal or integer literal in free text.
var numericLiteralRe = regexp.MustCompile(`[-+]?\d*\.\d+|\d+`)

type judgeAnswer struct {
	Score *float64 `json:"score"`
}

// ExtractScore reads a unit score out of an untrusted judge response.
//
// It tries, in order: a strict {"score": n} object, the same object after
// JSON repair, and finally the first numeric literal anywhere in the text.
// The value is clamped into [0,1], so "7" yields 1.0. A response without any
// number yields ErrNoNumericScore.
func ExtractScore(resp string) (float64, error) {
	body := strings.TrimSpace(resp)

	if v, ok := decodeScoreObject(body); ok {
		return clampUnit(v), nil
	}
	if repaired, err := jsonrepair.JSONRepair(body); err == nil {
		if v, ok := decodeScoreObject(repaired); ok {
			return clampUnit(v), nil
		}
	}

	lit := numericLiteralRe.FindString(body)
	if lit == "" {
		return 0, ErrNoNumericScore
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, ErrNoNumericScore
	}
	return clampUnit(v), nil
}

func decodeScoreObject(body string) (float64, bool) {
	var ans judgeAnswer
	if err := json.Unmarshal([]byte(body), &ans); err != nil || ans.Score == nil {
		return 0, false
	}
	return *ans.Score, true
}
