package models

// EventType distinguishes archived events from announced ones.
type EventType string

const (
	EventTypePast     EventType = "past"
	EventTypeUpcoming EventType = "upcoming"
)

// Event is the write schema for the events table. Pointer fields separate
// "not sent" from "sent empty" so updates only touch supplied columns.
type Event struct {
	Type              *EventType `json:"type,omitempty" validate:"omitempty,oneof=past upcoming"`
	Title             *string    `json:"title,omitempty" validate:"omitempty,max=300"`
	Date              *string    `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Location          *string    `json:"location,omitempty"`
	Description       *string    `json:"description,omitempty"`
	ImageURL          *string    `json:"image_url,omitempty"`
	ImageURLs         *[]string  `json:"image_urls,omitempty"`
	VideoURL          *string    `json:"video_url,omitempty"`
	Highlights        *[]string  `json:"highlights,omitempty"`
	ParticipantsCount *int       `json:"participants_count,omitempty" validate:"omitempty,gte=0"`
	ImpactSummary     *string    `json:"impact_summary,omitempty"`
}

// EventColumns lists the columns clients may write, filter or sort on.
var EventColumns = []string{
	"id", "type", "title", "date", "location", "description", "image_url", "image_urls",
	"video_url", "highlights", "participants_count", "impact_summary", "created_at", "updated_at",
}
