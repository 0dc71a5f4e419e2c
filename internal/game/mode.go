package game

import "strings"

// Mode tells whether a session is played alone or on a shared seed
type Mode string

const (
	ModeSolo        Mode = "solo"
	ModeMultiplayer Mode = "multiplayer"
)

// Variant is the game-mode rule set layered over the reveal engine
type Variant string

const (
	VariantStandard Variant = "standard"
	VariantLuck     Variant = "luck"
	VariantTimeBomb Variant = "timebomb"
	VariantSurvival Variant = "survival"
)

func ParseVariant(s string) (Variant, bool) {
	switch v := Variant(strings.ToLower(s)); v {
	case VariantStandard, VariantLuck, VariantTimeBomb, VariantSurvival:
		return v, true
	default:
		return "", false
	}
}

// TimeBombTier selects the countdown and bonus rows of the Time Bomb tables
type TimeBombTier string

const (
	TierEasy       TimeBombTier = "easy"
	TierMedium     TimeBombTier = "medium"
	TierHard       TimeBombTier = "hard"
	TierImpossible TimeBombTier = "impossible"
	TierHacker     TimeBombTier = "hacker"
)

var TimeBombTiers = []TimeBombTier{TierEasy, TierMedium, TierHard, TierImpossible, TierHacker}

func ParseTimeBombTier(s string) (TimeBombTier, bool) {
	t := TimeBombTier(strings.ToLower(s))
	for _, known := range TimeBombTiers {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// TimeBombRules holds the countdown tables, in seconds
type TimeBombRules struct {
	Start     map[TimeBombTier]float64
	Bonus     map[TimeBombTier]float64
	FlagBonus float64
}

// SurvivalRules drive the per-level mine count
type SurvivalRules struct {
	BaseMines         int
	MineIncrement     int
	ReservedSafeCells int
}

// Rules are the tunable constants of the engine
type Rules struct {
	HintsPerGame int
	TimeBomb     TimeBombRules
	Survival     SurvivalRules
}

func DefaultRules() Rules {
	return Rules{
		HintsPerGame: 3,
		TimeBomb: TimeBombRules{
			Start: map[TimeBombTier]float64{
				TierEasy:       90,
				TierMedium:     60,
				TierHard:       45,
				TierImpossible: 30,
				TierHacker:     20,
			},
			Bonus: map[TimeBombTier]float64{
				TierEasy:       1.0,
				TierMedium:     0.5,
				TierHard:       0.2,
				TierImpossible: 0.05,
				TierHacker:     0.01,
			},
			FlagBonus: 1,
		},
		Survival: SurvivalRules{
			BaseMines:         40,
			MineIncrement:     5,
			ReservedSafeCells: 20,
		},
	}
}

// MinesForLevel returns min(maxMines, base + (level-1)*increment)
// where maxMines = max(1, rows*cols - reserved).
func (r SurvivalRules) MinesForLevel(level, rows, cols int) int {
	if level < 1 {
		level = 1
	}
	maxMines := rows*cols - r.ReservedSafeCells
	if maxMines < 1 {
		maxMines = 1
	}
	mines := r.BaseMines + (level-1)*r.MineIncrement
	if mines > maxMines {
		mines = maxMines
	}
	return mines
}

// Policy is the per-variant behaviour the session consults
type Policy struct {
	NumbersVisible bool
	FloodFill      bool
	TurnGated      bool
	HintsAllowed   bool
	Countdown      bool
	Progressive    bool
}

// PolicyFor resolves the policy of a variant; turn gating only applies to multiplayer Luck
func PolicyFor(v Variant, mode Mode) Policy {
	switch v {
	case VariantLuck:
		return Policy{TurnGated: mode == ModeMultiplayer}
	case VariantTimeBomb:
		return Policy{NumbersVisible: true, FloodFill: true, HintsAllowed: true, Countdown: true}
	case VariantSurvival:
		return Policy{NumbersVisible: true, FloodFill: true, HintsAllowed: true, Progressive: true}
	default:
		return Policy{NumbersVisible: true, FloodFill: true, HintsAllowed: true}
	}
}
