package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/robotsim/core/robot"
	"github.com/kilianp07/robotsim/core/world"
	"github.com/kilianp07/robotsim/test/util"
)

// TestIntegrationWorldOverBroker drives a robot through a real Mosquitto
// broker and reads its position back.
func TestIntegrationWorldOverBroker(t *testing.T) {
	util.RequireDocker(t)
	ctx := context.Background()
	broker, cleanup, err := util.StartMosquitto(ctx)
	require.NoError(t, err)
	defer cleanup()

	simGW, err := NewGateway(Config{Broker: broker, ClientID: "sim"})
	require.NoError(t, err)
	defer simGW.Close()
	require.True(t, simGW.Connected())

	cfg := world.DefaultConfig()
	cfg.Robots = 2
	cfg.TickPeriod = 20 * time.Millisecond
	cfg.Seed = 1
	w, err := world.New(cfg, simGW)
	require.NoError(t, err)
	defer w.Close()

	peer, err := NewGateway(Config{Broker: broker, ClientID: "peer"})
	require.NoError(t, err)
	defer peer.Close()

	positions := make(chan robot.Status, 64)
	require.NoError(t, peer.Subscribe(world.PositionTopic(1), func(_ string, payload []byte) {
		var s robot.Status
		if json.Unmarshal(payload, &s) == nil {
			select {
			case positions <- s:
			default:
			}
		}
	}))

	require.NoError(t, peer.Publish(world.CommandTopic(1), []byte(`{"left": 1, "right": 1}`)))
	require.Eventually(t, func() bool {
		return !w.Motors()[1].IsZero()
	}, 3*time.Second, 20*time.Millisecond)

	w.Start()
	select {
	case s := <-positions:
		assert.Equal(t, 1, s.RobotID)
	case <-time.After(3 * time.Second):
		t.Fatal("no position received")
	}
}
