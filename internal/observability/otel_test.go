package observability

import (
	"context"
	"testing"

	"supportdesk/internal/config"
)

func TestSetupOTel_DisabledReturnsNoop(t *testing.T) {
	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("SetupOTel: %v", err)
	}
	if shutdown == nil {
		t.Fatalf("shutdown is nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown returned %v", err)
	}
}

func TestSetupOTel_EnabledInsecure(t *testing.T) {
	cfg := config.OTELConfig{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		Insecure:    true,
		ServiceName: "supportdesk-test",
		SampleRatio: 1,
	}
	shutdown, err := SetupOTel(context.Background(), cfg, "test")
	if err != nil {
		t.Fatalf("SetupOTel: %v", err)
	}
	// the exporter connects lazily, shutdown must still succeed offline
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
