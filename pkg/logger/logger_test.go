package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerDefaultsToNop(t *testing.T) {
	require.NotNil(t, Logger())
}

func TestInitWithValidLevel(t *testing.T) {
	require.NoError(t, Init("debug"))
	require.NotNil(t, Logger())
	require.NotNil(t, WithModule("test"))
}

func TestInitWithInvalidLevelFallsBack(t *testing.T) {
	// an unparseable level must not break initialisation
	require.NoError(t, Init("not-a-level"))
	require.NotNil(t, Logger())
}
