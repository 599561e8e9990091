package entities

import "github.com/google/uuid"

type Address struct {
	AddressID uuid.UUID
	UserID    uuid.UUID
	Street    string
	City      string
	State     string
	ZipCode   string
	Country   string
	IsDefault bool
}
