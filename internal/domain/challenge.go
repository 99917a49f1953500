package domain

import (
	"strings"
	"time"
)

// NormalizeEmail canonicalises an address for use as a storage key:
// trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Profile is the participant data captured at issuance time and carried
// forward to the game session only after the code is verified.
type Profile struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	Destination     string `json:"destination"`
	DestinationCode string `json:"destinationCode"`
	ReceiveUpdates  bool   `json:"receiveUpdates"`
}

// OTPChallenge is one outstanding verification attempt for an email.
// PK: email — a fresh issue replaces the previous item, so at most one
// challenge per email exists at any time.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type OTPChallenge struct {
	Email           string    `json:"email" dynamodbav:"email"`
	Code            string    `json:"-" dynamodbav:"code"`
	Name            string    `json:"name" dynamodbav:"name"`
	Destination     string    `json:"destination" dynamodbav:"destination"`
	DestinationCode string    `json:"destination_code" dynamodbav:"destination_code"`
	ReceiveUpdates  bool      `json:"receive_updates" dynamodbav:"receive_updates"`
	Verified        bool      `json:"verified" dynamodbav:"verified"`
	CreatedAt       time.Time `json:"created" dynamodbav:"created_at"`
	ExpiresAt       int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Expired reports whether the challenge TTL has passed at the given instant.
func (c *OTPChallenge) Expired(now time.Time) bool {
	return c.ExpiresAt <= now.Unix()
}

// Profile returns the participant data captured with the challenge.
func (c *OTPChallenge) Profile() Profile {
	return Profile{
		Email:           c.Email,
		Name:            c.Name,
		Destination:     c.Destination,
		DestinationCode: c.DestinationCode,
		ReceiveUpdates:  c.ReceiveUpdates,
	}
}
