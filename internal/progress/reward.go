package progress

import (
	"math"

	"github.com/monbattle/engine/pkg/core"
)

var classMultipliers = map[string]float64{
	"Bug Catcher":  0.5,
	"Youngster":    0.6,
	"Lass":         0.6,
	"Camper":       0.7,
	"Picnicker":    0.7,
	"Jr. Trainer":  0.8,
	"Fisherman":    0.8,
	"Swimmer":      0.8,
	"Hiker":        0.9,
	"Bird Keeper":  0.9,
	"Beauty":       1.2,
	"Psychic":      1.2,
	"Black Belt":   1.3,
	"PokeManiac":   1.3,
	"Gambler":      1.5,
	"Ace Trainer":  1.5,
	"Rival":        1.5,
	"Cool Trainer": 1.4,
	"Veteran":      1.6,
	"Gentleman":    1.8,
	"Rich Boy":     2.0,
	"Gym Leader":   2.5,
	"Elite Four":   3.0,
	"Champion":     4.0,
}

// ClassMultiplier returns the payout multiplier for a trainer class.
// Unknown classes pay 1.0.
func ClassMultiplier(class string) float64 {
	if m, ok := classMultipliers[class]; ok {
		return m
	}
	return 1.0
}

// TrainerReward is the trainer's explicit reward, or floor(avgLevel*20*m)
// when none is set.
func TrainerReward(t core.Trainer) int {
	if t.Reward > 0 {
		return t.Reward
	}
	if len(t.Party) == 0 {
		return 0
	}
	total := 0
	for _, p := range t.Party {
		total += p.Level
	}
	avg := float64(total) / float64(len(t.Party))
	return int(math.Floor(avg * 20 * ClassMultiplier(t.Class)))
}
