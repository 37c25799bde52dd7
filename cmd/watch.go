package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/robotsim/core/robot"
	"github.com/kilianp07/robotsim/core/world"
	"github.com/kilianp07/robotsim/infra/mqtt"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print robot positions as they are published",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Int("robot", -1, "only show this robot id")
	rootCmd.AddCommand(watchCmd)
}

// printPosition writes one status line; it returns false for payloads that
// are not robot statuses or that belong to another robot than only.
func printPosition(out io.Writer, payload []byte, only int) bool {
	var st robot.Status
	if err := json.Unmarshal(payload, &st); err != nil {
		return false
	}
	if only >= 0 && st.RobotID != only {
		return false
	}
	_, err := fmt.Fprintf(out, "robot %d: x=%.3f y=%.3f heading=%.1f°\n",
		st.RobotID, st.X, st.Y, st.Orientation*180/math.Pi)
	return err == nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	only, _ := cmd.Flags().GetInt("robot")

	mcfg := cfg.MQTT
	mcfg.ClientID = mcfg.ClientID + "-watch"
	gw, err := mqtt.NewGateway(mcfg)
	if err != nil {
		return err
	}
	defer gw.Close()

	lines := make(chan []byte, 64)
	err = gw.Subscribe(world.PositionTopicFilter, func(_ string, payload []byte) {
		select {
		case lines <- payload:
		default:
		}
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case p := <-lines:
			printPosition(out, p, only)
		}
	}
}
