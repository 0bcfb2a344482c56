// README: Reliability scoring, a weighted mix of acceptance, completion and timeout rates.
package reliability

import "math"

const (
	acceptanceWeight = 0.40
	completionWeight = 0.40
	timeoutWeight    = 0.20
)

// Score computes the metrics for one provider. Negative counts are treated as zero and no
// count may exceed the one it is a share of, so every rate stays within [0,1].
func Score(o Outcome) Metrics {
	total := nonNegative(o.Total)
	accepted := clamp(o.Accepted, total)
	completed := clamp(o.Completed, accepted)
	timeouts := clamp(o.AutoDeclinedOnTimeout, total)
	o.Total, o.Accepted, o.Completed, o.AutoDeclinedOnTimeout = total, accepted, completed, timeouts
	o.ManuallyDeclined = clamp(o.ManuallyDeclined, total)

	acceptance := ratio(accepted, total)
	completion := ratio(completed, accepted)
	timeout := ratio(timeouts, total)

	score := acceptanceWeight*acceptance + completionWeight*completion + timeoutWeight*(1-timeout)
	if total == 0 {
		// no history: no credit for the absence of timeouts either
		score = 0
	}

	return Metrics{
		Outcome:          o,
		AcceptanceRate:   percent(acceptance),
		TimeoutRate:      percent(timeout),
		CompletionRate:   percent(completion),
		ReliabilityScore: percent(score),
		Label:            Label(percent(score)),
	}
}

// Label buckets a score; lower bounds are inclusive.
func Label(score float64) string {
	switch {
	case score >= 80:
		return LabelVeryReliable
	case score >= 60:
		return LabelReliable
	case score >= 40:
		return LabelModeratelyReliable
	default:
		return LabelUnreliable
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func percent(r float64) float64 {
	return math.Round(r*10000) / 100
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func clamp(n, limit int) int {
	return min(nonNegative(n), limit)
}
