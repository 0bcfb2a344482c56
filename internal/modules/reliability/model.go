// README: Assignment outcome counts and the per-provider reliability metrics derived from them.
package reliability

import "github.com/npsfilm/spaceseller-36983-sub001/internal/types"

// Outcome is a provider's assignment history as counts.
type Outcome struct {
	ProviderID            types.ID `json:"provider_id"`
	Total                 int      `json:"total"`
	Accepted              int      `json:"accepted"`
	ManuallyDeclined      int      `json:"manually_declined"`
	AutoDeclinedOnTimeout int      `json:"auto_declined_on_timeout"`
	Completed             int      `json:"completed"`
}

// Metrics rates and score are percentages rounded to two decimals.
type Metrics struct {
	Outcome
	AcceptanceRate   float64 `json:"acceptance_rate"`
	TimeoutRate      float64 `json:"timeout_rate"`
	CompletionRate   float64 `json:"completion_rate"`
	ReliabilityScore float64 `json:"reliability_score"`
	Label            string  `json:"label"`
}

const (
	LabelVeryReliable       = "very reliable"
	LabelReliable           = "reliable"
	LabelModeratelyReliable = "moderately reliable"
	LabelUnreliable         = "unreliable"
)
