package devices

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCapacity(t *testing.T) {
	registry := NewRegistry(2)

	require.NoError(t, registry.Attach(&Device{name: "dev0"}))
	require.NoError(t, registry.Attach(&Device{name: "dev1"}))
	assert.Error(t, registry.Attach(&Device{name: "dev2"}))

	assert.Equal(t, 2, registry.Len())
	assert.Equal(t, "dev0", registry.Devices()[0].Name())
	assert.Equal(t, "dev1", registry.Devices()[1].Name())
}

func TestRegistryMinimumCapacity(t *testing.T) {
	registry := NewRegistry(0)

	require.NoError(t, registry.Attach(&Device{name: "dev0"}))
	assert.Error(t, registry.Attach(&Device{name: "dev1"}))
}

func TestNameAllowed(t *testing.T) {
	allowed := []string{"mtk-kpd", "matrix-keypad"}

	assert.True(t, nameAllowed("mtk-kpd", allowed))
	assert.True(t, nameAllowed("matrix-keypad", allowed))
	assert.False(t, nameAllowed("USB Optical Mouse", allowed))
	assert.False(t, nameAllowed("mtk-kpd", nil))
}

func TestIsCharDevice(t *testing.T) {
	regular := filepath.Join(t.TempDir(), "not-a-device")
	assert.False(t, isCharDevice(regular), "missing path")

	require.NoError(t, os.WriteFile(regular, nil, 0644))
	assert.False(t, isCharDevice(regular), "regular file")

	assert.True(t, isCharDevice("/dev/null"))
}

func TestEventString(t *testing.T) {
	ev := Event{Type: 1, Code: 103, Value: -4}
	assert.Equal(t, "type=1 code=103 value=-4", ev.String())
}
