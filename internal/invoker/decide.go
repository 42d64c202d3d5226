package invoker

import (
	"math"
	"net/http"
	"time"

	"github.com/mozilla-ai/fingate/internal/transport"
)

// Decision is the outcome of the retry state machine for one failed attempt.
type Decision string

const (
	// DecisionRetry means the failure is transient and retry budget remains.
	DecisionRetry Decision = "retry"

	// DecisionExhausted means the failure is transient but the retry budget is spent.
	DecisionExhausted Decision = "exhausted"

	// DecisionFail means the failure is permanent and must not be retried.
	DecisionFail Decision = "fail"
)

// Decide is the retry transition table.
//
// attempt is the zero-based index of the attempt that just failed and maxRetries is the
// number of retries allowed after the first attempt, so at most maxRetries+1 attempts are made.
//
//	kind          status        decision
//	timeout       any           retry while attempt < maxRetries
//	unreachable   any           retry while attempt < maxRetries
//	protocol      5xx or 429    retry while attempt < maxRetries
//	protocol      other         fail
//	unauthorized  any           fail
//	canceled      any           fail
func Decide(kind transport.Kind, status int, attempt int, maxRetries int) Decision {
	if !transient(kind, status) {
		return DecisionFail
	}

	if attempt < maxRetries {
		return DecisionRetry
	}

	return DecisionExhausted
}

// DecideError applies Decide to a failed attempt. A tool-level error is the server's
// answer to the call, so it fails immediately whatever HTTP status carried it.
func DecideError(err *transport.Error, attempt int, maxRetries int) Decision {
	if err.ToolError {
		return DecisionFail
	}

	return Decide(err.Kind, err.Status, attempt, maxRetries)
}

func transient(kind transport.Kind, status int) bool {
	switch kind {
	case transport.KindTimeout, transport.KindUnreachable:
		return true
	case transport.KindProtocol:
		return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
	default:
		return false
	}
}

// Backoff returns the delay before the retry following the given zero-based attempt:
// initial × 2^attempt varied by ±jitter using r in [0,1), never more than maxDelay.
func Backoff(initial time.Duration, maxDelay time.Duration, jitter float64, attempt int, r float64) time.Duration {
	if initial <= 0 {
		return 0
	}

	delay := float64(initial) * math.Pow(2, float64(attempt))
	if maxDelay > 0 && delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}

	if jitter > 0 {
		delay += delay * jitter * (r*2 - 1)
	}

	if maxDelay > 0 {
		delay = min(delay, float64(maxDelay))
	}

	return time.Duration(max(delay, 0))
}
