package sqlfmt

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// CheckResult describes a parameter value that tripped the injection
// scanner.
type CheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Index       int    // Zero-based position in the parameter list
	Value       any    // The value that was checked
}

// CheckParam runs libinjection over one parameter value.
//
// Only string values are checked - numbers, booleans, and other types cannot
// carry SQL injection patterns and return nil. A nil result means the value
// is clean.
func CheckParam(index int, value any) *CheckResult {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if isSQLi {
		return &CheckResult{
			IsSQLi:      true,
			Fingerprint: string(fingerprint),
			Index:       index,
			Value:       value,
		}
	}
	return nil
}

// CheckParams scans every parameter and returns one result per offender.
// An empty slice means all values are clean.
func CheckParams(params []any) []*CheckResult {
	var results []*CheckResult
	for i, value := range params {
		if result := CheckParam(i, value); result != nil {
			results = append(results, result)
		}
	}
	return results
}
