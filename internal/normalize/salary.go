package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var leadingNumberRegex = regexp.MustCompile(`\d[\d,]*(\.\d+)?`)

// CoerceSalary converts a loosely typed salary value into a non-negative
// integer. Numbers are truncated, strings are parsed for their first number
// ("$120,000/yr" -> 120000, "80k" -> 80000). Anything else yields 0.
func CoerceSalary(raw any) int {
	switch v := raw.(type) {
	case nil:
		return 0
	case int:
		return clampSalary(float64(v))
	case int64:
		return clampSalary(float64(v))
	case float64:
		return clampSalary(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return clampSalary(f)
	case string:
		return parseSalaryString(v)
	default:
		return 0
	}
}

func parseSalaryString(s string) int {
	s = strings.TrimSpace(strings.ToLower(s))
	loc := leadingNumberRegex.FindStringIndex(s)
	if loc == nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s[loc[0]:loc[1]], ",", ""), 64)
	if err != nil {
		return 0
	}
	if loc[1] < len(s) && s[loc[1]] == 'k' {
		f *= 1000
	}
	return clampSalary(f)
}

func clampSalary(f float64) int {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
