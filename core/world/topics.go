package world

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	topicRoot = "robots"
	// CommandTopicFilter matches the command topic of every robot.
	CommandTopicFilter = topicRoot + "/+/command"
	// PositionTopicFilter matches the position topic of every robot.
	PositionTopicFilter = topicRoot + "/+/position"
)

// CommandTopic returns the topic a robot listens to for motor commands.
func CommandTopic(id int) string { return fmt.Sprintf("%s/%d/command", topicRoot, id) }

// PositionTopic returns the topic a robot publishes its status to.
func PositionTopic(id int) string { return fmt.Sprintf("%s/%d/position", topicRoot, id) }

// ParseCommandTopic extracts the robot id from a command topic.
func ParseCommandTopic(topic string) (int, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != topicRoot || parts[2] != "command" {
		return 0, false
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
