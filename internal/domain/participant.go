package domain

// Participant is a player seated in a multiplayer room
type Participant struct {
	ID          string `json:"id"`
	UserID      *int64 `json:"user_id,omitempty"`
	DisplayName string `json:"display_name"`
	Ready       bool   `json:"ready"`
	Finished    bool   `json:"finished"`
	Eliminated  bool   `json:"eliminated"`
	Score       int    `json:"score"`
	ElapsedTime int    `json:"elapsed_time"`
}
