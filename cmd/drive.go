package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	coremqtt "github.com/kilianp07/robotsim/core/mqtt"
	"github.com/kilianp07/robotsim/core/world"
	"github.com/kilianp07/robotsim/infra/mqtt"
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Send a motor command to a robot",
	Example: `  robotsim drive --robot 0 --left 1 --right 1     # forward
  robotsim drive --robot 0 --left -1 --right -1   # backward
  robotsim drive --robot 0 --left -0.5 --right 0.5 # turn left
  robotsim drive --robot 0 --token s               # stop`,
	Args: cobra.NoArgs,
	RunE: runDrive,
}

func init() {
	driveCmd.Flags().Int("robot", 0, "target robot id")
	driveCmd.Flags().Float64("left", 0, "left wheel power in [-1, 1]")
	driveCmd.Flags().Float64("right", 0, "right wheel power in [-1, 1]")
	driveCmd.Flags().String("token", "", "legacy token: l, r or s")
	rootCmd.AddCommand(driveCmd)
}

// commandPayload encodes a structured command, or the legacy token when one
// is given.
func commandPayload(token string, left, right float64) ([]byte, error) {
	if token = strings.TrimSpace(token); token != "" {
		return []byte(token), nil
	}
	return json.Marshal(struct {
		Left  float64 `json:"left"`
		Right float64 `json:"right"`
	}{left, right})
}

func runDrive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	id, _ := flags.GetInt("robot")
	left, _ := flags.GetFloat64("left")
	right, _ := flags.GetFloat64("right")
	token, _ := flags.GetString("token")
	if id < 0 {
		return fmt.Errorf("robot id must not be negative: %d", id)
	}
	payload, err := commandPayload(token, left, right)
	if err != nil {
		return err
	}

	mcfg := cfg.MQTT
	mcfg.ClientID = mcfg.ClientID + "-drive"
	gw, err := mqtt.NewGateway(mcfg)
	if err != nil {
		return err
	}
	defer gw.Close()
	if !gw.Connected() {
		return fmt.Errorf("%s: %w", gw.Broker(), coremqtt.ErrNotConnected)
	}
	topic := world.CommandTopic(id)
	if err := gw.Publish(topic, payload); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s <- %s\n", topic, payload)
	return err
}
