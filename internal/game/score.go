package game

// ScoreInput is the telemetry the score is derived from
type ScoreInput struct {
	Mode    Mode
	Variant Variant
	Won     bool

	// safe cells revealed by the local participant on the current board, flood fill included
	TilesRevealed int
	// Survival: tiles of every completed level
	CompletedLevelTiles int
	// multiplayer: tiles revealed by every participant, local included
	AllParticipantsTiles int
}

// CalculateScore derives the numeric result of a session.
// Solo scores partial progress on a loss too.
func CalculateScore(in ScoreInput) int {
	if in.Mode == ModeMultiplayer {
		if in.Won {
			return in.AllParticipantsTiles
		}
		return in.TilesRevealed
	}
	if in.Variant == VariantSurvival {
		return in.CompletedLevelTiles + in.TilesRevealed
	}
	return in.TilesRevealed
}
