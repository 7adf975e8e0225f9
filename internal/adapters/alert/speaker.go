package alert

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hawkmon/breachwatch/internal/domain"
	"github.com/hawkmon/breachwatch/internal/ports"
)

// The two announcement phrases. A config flag picks one; nothing else is
// ever spoken.
const (
	PhraseContainment = "Attention. Sensor anomaly detected. Initiate containment protocols."
	PhraseEvacuation  = "Critical alert. Interdimensional breach in progress. Evacuate the laboratory."
)

type Config struct {
	Enabled             bool          `yaml:"enabled"`
	UseEvacuationPhrase bool          `yaml:"use_evacuation_phrase"`
	Player              string        `yaml:"player"`
	Timeout             time.Duration `yaml:"timeout"`
}

// Speaker announces breaches by piping a fixed phrase to an external player
// command. With no player configured it logs the phrase instead.
type Speaker struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Speaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Speaker{cfg: cfg, log: logger}
}

func (s *Speaker) phrase() string {
	if s.cfg.UseEvacuationPhrase {
		return PhraseEvacuation
	}
	return PhraseContainment
}

func (s *Speaker) Announce(a *domain.Assessment) error {
	if !s.cfg.Enabled || a == nil || a.Level < 1 {
		return nil
	}

	phrase := s.phrase()
	if strings.TrimSpace(s.cfg.Player) == "" {
		s.log.Warn("voice alert",
			zap.String("phrase", phrase),
			zap.Int("level", a.Level))
		return nil
	}

	parts := strings.Fields(s.cfg.Player)
	args := append(parts[1:], phrase)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("alert player %q: %w: %s", parts[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

var _ ports.Alerter = (*Speaker)(nil)
