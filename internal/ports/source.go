package ports

import "github.com/hawkmon/breachwatch/internal/domain"

// Source streams readings from any backend (simulator, OPC UA, MQTT, ...)
// into the monitoring pipeline, one reading per metric per cycle.
type Source interface {
	Start(out chan<- *domain.Reading) error
	Stop() error
}
