// README: Reliability report for admin staffing tools.
package reliability

import (
	"context"
	"sort"
)

type Source interface {
	Outcomes(ctx context.Context) ([]Outcome, error)
}

type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// Report scores every provider with assignment history, best first.
func (s *Service) Report(ctx context.Context) ([]Metrics, error) {
	outcomes, err := s.source.Outcomes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Metrics, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, Score(o))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReliabilityScore > out[j].ReliabilityScore
	})
	return out, nil
}
