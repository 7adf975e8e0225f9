package ports

import "github.com/hawkmon/breachwatch/internal/domain"

// Narrator turns a breach assessment into a human-readable explanation.
// Implementations may be templates or remote generators; the pipeline only
// hands them the assessment and the cycle's verdicts.
type Narrator interface {
	Explain(a *domain.Assessment, verdicts []domain.Verdict) string
}
