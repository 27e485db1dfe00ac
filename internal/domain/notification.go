package domain

import "time"

// DeliveryOutcome is the result of one push attempt against one token.
type DeliveryOutcome struct {
	Token     string `json:"token" dynamodbav:"token"`
	Delivered bool   `json:"delivered" dynamodbav:"delivered"`
	Receipt   string `json:"receipt,omitempty" dynamodbav:"receipt"`
	Error     string `json:"error,omitempty" dynamodbav:"error"`
}

// DispatchReport summarises one fan-out: every active token of the user is
// attempted exactly once and failures are recorded, never escalated.
type DispatchReport struct {
	Message   string            `json:"message"`
	Attempted int               `json:"attempted"`
	Delivered int               `json:"delivered"`
	Outcomes  []DeliveryOutcome `json:"outcomes"`
}

// Notification is the persisted history record of a dispatch.
type Notification struct {
	NotificationID string            `json:"id" dynamodbav:"notification_id"`
	User           string            `json:"user" dynamodbav:"user"`
	Title          string            `json:"title" dynamodbav:"title"`
	Message        string            `json:"message" dynamodbav:"message"`
	Attempted      int               `json:"attempted" dynamodbav:"attempted"`
	Delivered      int               `json:"delivered" dynamodbav:"delivered"`
	Outcomes       []DeliveryOutcome `json:"outcomes" dynamodbav:"outcomes"`
	CreatedAt      time.Time         `json:"created" dynamodbav:"created_at"`
}
