package domain

import "time"

// Identity is the read-only profile view the core discloses on success.
type Identity struct {
	ID            int64     `json:"id"`
	DisplayName   string    `json:"display_name"`
	EnrolledSince time.Time `json:"enrolled_since"`
}

// Vehicle is one vehicle owned by an identity.
type Vehicle struct {
	ID    int64  `json:"id"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	Plate string `json:"plate"`
	VIN   string `json:"vin"`
	Color string `json:"color"`
}
