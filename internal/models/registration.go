package models

import "time"

// EventRegistration is an attendee sign-up for a single event. Field names
// keep the camelCase keys the registration form has always posted.
type EventRegistration struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"max=200"`
	Gender       string    `json:"gender"`
	Age          FlexInt   `json:"age" validate:"gte=0,lte=150"`
	Email        string    `json:"email" validate:"omitempty,email"`
	Phone        string    `json:"phone" validate:"max=50"`
	EventID      string    `json:"eventId"`
	EventTitle   string    `json:"eventTitle"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// RegistrationState is the whole persisted registration document.
type RegistrationState struct {
	Registrations []EventRegistration `json:"registrations"`
	LastViewedAt  *time.Time          `json:"last_viewed_at,omitempty"`
}
