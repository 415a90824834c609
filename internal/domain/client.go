package domain

import "github.com/google/uuid"

// Client is the owner of transactions. The engine reads clients only as the
// join key for velocity counting and never mutates them.
type Client struct {
	ID          uuid.UUID
	FullName    string // PII
	NationalID  string // PII
	Email       string // PII
	CreditScore int
	Country     string
}
