package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew_Level(t *testing.T) {
	logger, err := New(true, "warn")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if logger.Core().Enabled(zap.InfoLevel) || !logger.Core().Enabled(zap.WarnLevel) {
		t.Fatalf("level not applied")
	}

	if _, err := New(false, "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
