package models

import "time"

// Account types a user can register with.
const (
	UserTypeCustomer = "customer"
	UserTypeOwner    = "owner"
)

type User struct {
	ID        string
	Email     string
	Salt      []byte
	Verifier  []byte
	FullName  string
	UserType  string
	CreatedAt time.Time
}
