package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProducesWorkingLogger(t *testing.T) {
	log := New(Opts{Env: "development"})
	require.NotNil(t, log)

	log.Info("hello", "key", "value")
	log.With("a", 1).Error("with fields")
	log.WithComponent("Test").Debug("component scoped")
}
