package health

import "github.com/mozilla-ai/fingate/internal/domain"

// Next is the health transition table. Given the current state and consecutive failure count,
// it returns the state and count after applying outcome.
//
//	outcome   failures after   state after
//	success   0                connected
//	failure   n < threshold    degraded
//	failure   n >= threshold   unreachable
func Next(state domain.HealthState, failures int, outcome domain.Outcome, threshold int) (domain.HealthState, int) {
	if outcome.Success {
		return domain.HealthStateConnected, 0
	}

	threshold = max(threshold, 1)
	failures = max(failures, 0) + 1

	if failures >= threshold {
		return domain.HealthStateUnreachable, failures
	}

	return domain.HealthStateDegraded, failures
}
