package ports

import "github.com/hawkmon/breachwatch/internal/domain"

// Alerter plays an audible alert for a breach. Implementations choose
// between exactly two fixed phrases; no other text is ever synthesized
// for audio.
type Alerter interface {
	Announce(a *domain.Assessment) error
}
