package game

import "testing"

func TestCalculateScore(t *testing.T) {
	cases := []struct {
		name string
		in   ScoreInput
		want int
	}{
		{"solo win", ScoreInput{Mode: ModeSolo, Variant: VariantStandard, Won: true, TilesRevealed: 71}, 71},
		{"solo loss keeps progress", ScoreInput{Mode: ModeSolo, Variant: VariantTimeBomb, TilesRevealed: 12}, 12},
		{"solo survival", ScoreInput{Mode: ModeSolo, Variant: VariantSurvival, TilesRevealed: 7, CompletedLevelTiles: 216}, 223},
		{"multiplayer winner", ScoreInput{Mode: ModeMultiplayer, Variant: VariantLuck, Won: true, TilesRevealed: 5, AllParticipantsTiles: 40}, 40},
		{"multiplayer loser", ScoreInput{Mode: ModeMultiplayer, Variant: VariantLuck, TilesRevealed: 5, AllParticipantsTiles: 40}, 5},
	}
	for _, tc := range cases {
		if got := CalculateScore(tc.in); got != tc.want {
			t.Fatalf("%s: score = %d; want %d", tc.name, got, tc.want)
		}
	}
}
