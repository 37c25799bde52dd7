package world

import (
	"math"
	"math/rand"

	"github.com/kilianp07/robotsim/core/kinematics"
)

// Formation places n robots on a square grid of side ceil(sqrt(n)) inside an
// arena of the given size. Robot i sits at row i/side, column i%side, with
// spacing size/(side+1) and a random heading drawn from [0, 2π).
func Formation(n int, size float64, rng *rand.Rand) ([]kinematics.Pose, error) {
	if n <= 0 {
		return nil, ErrInvalidRobotCount
	}
	side := int(math.Ceil(math.Sqrt(float64(n))))
	spacing := size / float64(side+1)
	poses := make([]kinematics.Pose, n)
	for i := range poses {
		row, col := i/side, i%side
		poses[i] = kinematics.Pose{
			X:       spacing * float64(col+1),
			Y:       spacing * float64(row+1),
			Heading: kinematics.NormalizeHeading(rng.Float64() * 2 * math.Pi),
		}
	}
	return poses, nil
}
