package domain

import "time"

// Game results.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

// GameSession is the durable record marking an email as having completed
// registration and gameplay exactly once.
// PK: email — the table-level key is the uniqueness constraint; insertion
// failure on an existing key is the authoritative "already played" signal.
type GameSession struct {
	SessionID       string    `json:"id" dynamodbav:"session_id"`
	Email           string    `json:"email" dynamodbav:"email"`
	Name            string    `json:"name" dynamodbav:"name"`
	Destination     string    `json:"destination" dynamodbav:"destination"`
	DestinationCode string    `json:"destination_code" dynamodbav:"destination_code"`
	ReceiveUpdates  bool      `json:"receive_updates" dynamodbav:"receive_updates"`
	OTPVerified     bool      `json:"otp_verified" dynamodbav:"otp_verified"`
	GameResult      string    `json:"game_result,omitempty" dynamodbav:"game_result,omitempty"` // "" until played, then "win" | "loss"
	CreatedAt       time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Stats summarises all game sessions for the admin panel.
type Stats struct {
	TotalParticipants int           `json:"totalParticipants"`
	Wins              int           `json:"wins"`
	Losses            int           `json:"losses"`
	Sessions          []GameSession `json:"sessions"`
}
