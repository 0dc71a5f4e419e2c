package game

import "testing"

func TestSurvivalMinesForLevel(t *testing.T) {
	r := SurvivalRules{BaseMines: 40, MineIncrement: 5, ReservedSafeCells: 20}
	cases := []struct {
		level, want int
	}{
		{1, 40},
		{2, 45},
		{3, 50},
		{40, 235},
		{41, 236},
		{100, 236},
	}
	for _, tc := range cases {
		if got := r.MinesForLevel(tc.level, 16, 16); got != tc.want {
			t.Fatalf("MinesForLevel(%d) = %d; want %d", tc.level, got, tc.want)
		}
	}
	if got := r.MinesForLevel(1, 4, 4); got != 1 {
		t.Fatalf("tiny board cap = %d; want 1", got)
	}
}

func TestPolicyFor(t *testing.T) {
	cases := []struct {
		v    Variant
		mode Mode
		want Policy
	}{
		{VariantStandard, ModeSolo, Policy{NumbersVisible: true, FloodFill: true, HintsAllowed: true}},
		{VariantLuck, ModeSolo, Policy{}},
		{VariantLuck, ModeMultiplayer, Policy{TurnGated: true}},
		{VariantTimeBomb, ModeMultiplayer, Policy{NumbersVisible: true, FloodFill: true, HintsAllowed: true, Countdown: true}},
		{VariantSurvival, ModeSolo, Policy{NumbersVisible: true, FloodFill: true, HintsAllowed: true, Progressive: true}},
	}
	for _, tc := range cases {
		if got := PolicyFor(tc.v, tc.mode); got != tc.want {
			t.Fatalf("PolicyFor(%s,%s) = %+v; want %+v", tc.v, tc.mode, got, tc.want)
		}
	}
}

func TestParseVariantAndTier(t *testing.T) {
	if v, ok := ParseVariant("TimeBomb"); !ok || v != VariantTimeBomb {
		t.Fatalf("ParseVariant = %q %v", v, ok)
	}
	if _, ok := ParseVariant("roulette"); ok {
		t.Fatalf("unknown variant accepted")
	}
	if tier, ok := ParseTimeBombTier("hacker"); !ok || tier != TierHacker {
		t.Fatalf("ParseTimeBombTier = %q %v", tier, ok)
	}
	if _, ok := ParseTimeBombTier("nightmare"); ok {
		t.Fatalf("unknown tier accepted")
	}
}
