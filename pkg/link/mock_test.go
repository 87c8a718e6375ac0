package link

import (
	"testing"
	"time"

	"github.com/itohio/gopedal/pkg/config"
	"github.com/itohio/gopedal/pkg/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.Simulator.SweepPeriod = 200 * time.Millisecond
	cfg.Simulator.Noise = 0
	cfg.Pipeline.Tick = time.Millisecond
	return cfg
}

func TestNewMock_NilConfig(t *testing.T) {
	dev, err := NewMock(nil)
	require.NoError(t, err)
	assert.NotNil(t, dev.cfg)
	assert.Len(t, dev.sweeps, 2)
	assert.False(t, dev.IsConnected())
}

func TestNewMock_InvalidChannel(t *testing.T) {
	cfg := config.Default()
	cfg.Pedals[0].Channel = 0
	_, err := NewMock(cfg)
	assert.Error(t, err)
}

func TestMock_Connect_AlreadyConnected(t *testing.T) {
	dev, err := NewMock(fastConfig())
	require.NoError(t, err)

	require.NoError(t, dev.Connect())
	defer dev.Close()

	err = dev.Connect()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already connected")
}

func TestMock_Close_NotConnected(t *testing.T) {
	dev, err := NewMock(nil)
	require.NoError(t, err)
	assert.NoError(t, dev.Close())
}

func TestMock_ProducesReportsForEveryPedal(t *testing.T) {
	dev, err := NewMock(fastConfig())
	require.NoError(t, err)
	require.NoError(t, dev.Connect())
	defer dev.Close()

	seen := map[int]diag.Report{}
	timeout := time.After(5 * time.Second)
	for len(seen) < 2 {
		select {
		case r := <-dev.Reports():
			assert.GreaterOrEqual(t, r.Value, 0)
			assert.LessOrEqual(t, r.Value, 127)
			assert.Less(t, r.Min, r.Max)
			assert.False(t, r.Time.IsZero())
			seen[r.Pedal] = r
		case <-timeout:
			t.Fatalf("only pedals %v reported within timeout", seen)
		}
	}

	assert.Equal(t, uint8(11), seen[0].Controller)
	assert.Equal(t, uint8(16), seen[1].Controller)
}

func TestMock_SetEnabled(t *testing.T) {
	dev, err := NewMock(nil)
	require.NoError(t, err)

	assert.NoError(t, dev.SetEnabled(1, false))
	assert.False(t, dev.adc.Enabled(6))
	assert.Error(t, dev.SetEnabled(2, true))
}

// TestMock_GracefulShutdown tests that Mock closes the reports channel
// when Close() is called.
func TestMock_GracefulShutdown(t *testing.T) {
	dev, err := NewMock(fastConfig())
	require.NoError(t, err)
	require.NoError(t, dev.Connect())

	reports := dev.Reports()

	// Read a few reports
	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range reports {
			received++
			if received == 3 {
				// Got enough reports, now close device
				dev.Close()
			}
		}
	}()

	// Wait for reports and channel closure
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Reports channel did not close within timeout")
	}

	assert.GreaterOrEqual(t, received, 3, "Should receive reports before channel closes")
	assert.False(t, dev.IsConnected())

	// Reconnecting a finished simulation is refused
	assert.Error(t, dev.Connect())
}
