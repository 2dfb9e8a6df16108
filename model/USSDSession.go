package model

import "time"

// Language values are the raw selector the subscriber types on the first screen.
const (
	LanguagePrimary   = "1"
	LanguageSecondary = "2"
)

type USSDSession struct {
	Id          string    `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	LastInput   string    `json:"last_input"`
	Language    string    `json:"language"`
	Page        int       `json:"page"`
	UpdatedAt   time.Time `json:"updated_at"`
}
