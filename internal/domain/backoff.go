package domain

import (
	"fmt"
	"time"
)

// ErrorClass names a transient failure category with its own retry pacing.
type ErrorClass string

const (
	ErrorClassHTTP      ErrorClass = "http"
	ErrorClassFragment  ErrorClass = "fragment"
	ErrorClassExtractor ErrorClass = "extractor"
)

type retryPolicy struct {
	step time.Duration
	cap  time.Duration
}

var retryTable = map[ErrorClass]retryPolicy{
	ErrorClassHTTP:      {step: 5 * time.Second, cap: 30 * time.Second},
	ErrorClassFragment:  {step: 2 * time.Second, cap: 10 * time.Second},
	ErrorClassExtractor: {step: 2 * time.Second, cap: 10 * time.Second},
}

// Backoff returns the wait before retry attempt n (1-based) for the given
// error class: linear growth capped at the class ceiling. Unknown classes
// and non-positive attempts yield zero.
func Backoff(class ErrorClass, attempt int) time.Duration {
	policy, ok := retryTable[class]
	if !ok || attempt < 1 {
		return 0
	}
	d := time.Duration(attempt) * policy.step
	if d > policy.cap {
		return policy.cap
	}
	return d
}

// RetrySleepSpecs renders the retry table as engine retry-sleep arguments,
// one "class:linear=step:cap:step" spec per class.
func RetrySleepSpecs() []string {
	classes := []ErrorClass{ErrorClassHTTP, ErrorClassFragment, ErrorClassExtractor}
	specs := make([]string, 0, len(classes))
	for _, class := range classes {
		policy := retryTable[class]
		specs = append(specs, fmt.Sprintf("%s:linear=%d:%d:%d",
			class, int(policy.step.Seconds()), int(policy.cap.Seconds()), int(policy.step.Seconds())))
	}
	return specs
}
