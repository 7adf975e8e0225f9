package opcua

import (
	"testing"

	"github.com/gopcua/opcua/ua"

	"github.com/hawkmon/breachwatch/internal/domain"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "missing endpoint",
			cfg:     Config{Nodes: []NodeConfig{{NodeID: "ns=2;s=Temp", Metric: domain.MetricTemperature}}},
			wantErr: true,
		},
		{
			name:    "no nodes",
			cfg:     Config{Endpoint: "opc.tcp://localhost:4840"},
			wantErr: true,
		},
		{
			name: "unknown metric",
			cfg: Config{
				Endpoint: "opc.tcp://localhost:4840",
				Nodes:    []NodeConfig{{NodeID: "ns=2;s=Temp", Metric: "humidity"}},
			},
			wantErr: true,
		},
		{
			name: "valid",
			cfg: Config{
				Endpoint: "opc.tcp://localhost:4840",
				Nodes:    []NodeConfig{{NodeID: "ns=2;s=Temp", Metric: domain.MetricTemperature}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{
		Endpoint: "opc.tcp://localhost:4840",
		Nodes:    []NodeConfig{{NodeID: "ns=2;s=Gas", Metric: domain.MetricGas}},
	}
	cfg.ApplyDefaults()

	if cfg.SecurityMode != "None" || cfg.SecurityPolicy != "None" {
		t.Fatalf("expected None security defaults, got %s/%s", cfg.SecurityMode, cfg.SecurityPolicy)
	}
	if cfg.PublishInterval <= 0 {
		t.Fatalf("expected positive publish interval")
	}
	if cfg.Nodes[0].SensorID != "ns=2;s=Gas" {
		t.Fatalf("expected sensor id to default to node id, got %q", cfg.Nodes[0].SensorID)
	}
}

func TestVariantToFloat(t *testing.T) {
	v := ua.MustVariant(float32(21.5))
	got, ok := variantToFloat(v)
	if !ok || got != 21.5 {
		t.Fatalf("float32 variant: got %f ok=%v", got, ok)
	}

	v = ua.MustVariant(int32(42))
	got, ok = variantToFloat(v)
	if !ok || got != 42 {
		t.Fatalf("int32 variant: got %f ok=%v", got, ok)
	}

	v = ua.MustVariant("not a number")
	if _, ok := variantToFloat(v); ok {
		t.Fatalf("string variant must not convert")
	}

	if _, ok := variantToFloat(nil); ok {
		t.Fatalf("nil variant must not convert")
	}
}

func TestSourceSeqPerSensor(t *testing.T) {
	s, err := NewSource(Config{
		Endpoint: "opc.tcp://localhost:4840",
		Nodes:    []NodeConfig{{NodeID: "ns=2;s=Temp", Metric: domain.MetricTemperature}},
	}, nil)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	if got := s.nextSeq("LAB-001"); got != 1 {
		t.Fatalf("expected first seq 1, got %d", got)
	}
	if got := s.nextSeq("LAB-001"); got != 2 {
		t.Fatalf("expected second seq 2, got %d", got)
	}
	if got := s.nextSeq("LAB-002"); got != 1 {
		t.Fatalf("expected independent seq per sensor, got %d", got)
	}
}
