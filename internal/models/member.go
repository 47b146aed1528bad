package models

// Member is the write schema for membership applications.
type Member struct {
	FullName           *string  `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Email              *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone              *string  `json:"phone,omitempty" validate:"omitempty,max=50"`
	Age                *FlexInt `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	SchoolOrganization *string  `json:"school_organization,omitempty"`
	Interests          *string  `json:"interests,omitempty"`
	WhyJoin            *string  `json:"why_join,omitempty"`
}

var MemberColumns = []string{
	"id", "full_name", "email", "phone", "age", "school_organization", "interests", "why_join",
	"created_at", "updated_at",
}
