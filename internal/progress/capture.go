package progress

import (
	"math"

	"github.com/monbattle/engine/internal/rng"
	"github.com/monbattle/engine/pkg/core"
)

// MasterBallBonus is the ball bonus that always catches.
const MasterBallBonus = 255

// StatusBonus is 2 for sleep and freeze, 1.5 for any other status.
func StatusBonus(s core.PrimaryStatus) float64 {
	switch s.Kind() {
	case core.StatusSleep, core.StatusFreeze:
		return 2
	case core.StatusNone, "":
		return 1
	default:
		return 1.5
	}
}

// CaptureRate is the catch probability in percent, clamped to [1, 100].
func CaptureRate(target core.Combatant, catchRate int, ballBonus float64) int {
	if target.MaxHP <= 0 {
		return 1
	}
	maxHP := float64(target.MaxHP)
	chance := (3*maxHP - 2*float64(target.CurrentHP)) * float64(catchRate) * ballBonus * StatusBonus(target.Status) / (3 * maxHP)
	return max(1, min(100, int(math.Floor(chance))))
}

// AttemptCapture rolls once against CaptureRate. The master ball succeeds
// regardless of the roll.
func AttemptCapture(target core.Combatant, catchRate int, ballBonus float64, r rng.Source) (bool, int) {
	rate := CaptureRate(target, catchRate, ballBonus)
	roll := r.Float64() * 100
	return roll <= float64(rate) || ballBonus >= MasterBallBonus, rate
}
