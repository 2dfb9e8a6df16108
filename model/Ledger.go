package model

import "time"

type TransactionStatus string

const (
	TransactionProcessed TransactionStatus = "Processed"
	TransactionSuccess   TransactionStatus = "Success"
)

type Transaction struct {
	Reference   string
	PhoneNumber string
	Service     string
	SubService  string
	Amount      float64
	Status      TransactionStatus
	CreatedAt   time.Time
}
