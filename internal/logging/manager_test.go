package logging

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetComponentLogger_Cached(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	first := GetComponentLogger("api")
	second := GetComponentLogger("api")
	assert.Same(t, first, second, "Повторный запрос компонента возвращает тот же логгер")

	components := GetLoggerManager().ListComponents()
	assert.Contains(t, components, "api")

	require.NoError(t, GetLoggerManager().CloseAll())
	assert.Empty(t, GetLoggerManager().ListComponents(), "CloseAll должен очистить реестр логгеров")
}
