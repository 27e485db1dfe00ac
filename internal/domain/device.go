package domain

import "time"

// Device is one registered push target, keyed by (user, token).
// The password is replicated onto every device record of a user; login matches
// against any of them. That mirrors the upstream data model and is not reconciled.
type Device struct {
	User       string    `json:"user" dynamodbav:"user"`
	Token      string    `json:"token" dynamodbav:"token"`
	Mail       string    `json:"mail" dynamodbav:"mail"`
	Password   string    `json:"-" dynamodbav:"password"`
	DeviceType string    `json:"device_type" dynamodbav:"device_type"`
	Active     bool      `json:"active" dynamodbav:"active"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type RegisterDeviceRequest struct {
	User       string `json:"user" validate:"required"`
	Token      string `json:"fcmtoken" validate:"required"`
	Mail       string `json:"mail"`
	Password   string `json:"password"`
	DeviceType string `json:"devicetype"`
	Active     bool   `json:"active"`
}
