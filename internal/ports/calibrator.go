package ports

import "github.com/hawkmon/breachwatch/internal/domain"

// Calibrator adjusts raw readings (unit conversion, offset correction)
// before they reach the engine.
type Calibrator interface {
	Calibrate(r *domain.Reading) (*domain.Reading, error)
	Version() uint16
}
