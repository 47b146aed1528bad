package models

// Partner is the write schema for partnership requests.
type Partner struct {
	OrganizationName    *string   `json:"organization_name,omitempty" validate:"omitempty,max=300"`
	ContactPerson       *string   `json:"contact_person,omitempty" validate:"omitempty,max=200"`
	Email               *string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone               *string   `json:"phone,omitempty" validate:"omitempty,max=50"`
	OrganizationType    *string   `json:"organization_type,omitempty"`
	Website             *string   `json:"website,omitempty"`
	PartnershipInterest *[]string `json:"partnership_interest,omitempty" validate:"omitempty,dive,oneof=donation cohost"`
	DonationAmount      *string   `json:"donation_amount,omitempty"`
	EventIdeas          *string   `json:"event_ideas,omitempty"`
	Message             *string   `json:"message,omitempty"`
}

var PartnerColumns = []string{
	"id", "organization_name", "contact_person", "email", "phone", "organization_type", "website",
	"partnership_interest", "donation_amount", "event_ideas", "message", "created_at", "updated_at",
}
