// Package world runs a fleet of simulated robots inside a square arena.
//
// A World owns its robots, places them in a grid formation at construction,
// receives motor commands through a Gateway and advances every robot on a
// fixed-rate tick loop, publishing each robot's status after every tick.
//
// Topic contract:
//
//	robots/{id}/command   inbound, {"left": <-1..1>, "right": <-1..1>} or a legacy token (l, r, s)
//	robots/{id}/position  outbound, {"robot_id": id, "x": .., "y": .., "orientation": ..}
//
// Two goroutines touch the robots: the tick loop and the command dispatcher.
// Both hold the same lock for a whole tick pass or a whole dispatch.
package world
