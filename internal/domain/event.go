package domain

// Event is an organization-hosted event students can apply to
type Event struct {
	EventID          string `json:"eventId" dynamodbav:"eventId"`
	OrgWalletAddress string `json:"orgWalletAddress" dynamodbav:"orgWalletAddress"`
	Title            string `json:"title" dynamodbav:"title"`
	Description      string `json:"description" dynamodbav:"description"`
	StartDate        string `json:"startDate" dynamodbav:"startDate"`
	EndDate          string `json:"endDate" dynamodbav:"endDate"`
	Location         string `json:"location" dynamodbav:"location"`
	MaxParticipants  *int   `json:"maxParticipants,omitempty" dynamodbav:"maxParticipants,omitempty"`
	Status           string `json:"status" dynamodbav:"status"` // upcoming, active, completed, cancelled
	CreatedAt        string `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt        string `json:"updatedAt" dynamodbav:"updatedAt"`
}

// EventStatus constants
const (
	EventStatusUpcoming  = "upcoming"
	EventStatusActive    = "active"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

// IsValidEventStatus reports whether s is a known event status
func IsValidEventStatus(s string) bool {
	switch s {
	case EventStatusUpcoming, EventStatusActive, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

// EventPatch carries the allow-listed fields of a partial event update.
// Nil fields are left unchanged.
type EventPatch struct {
	Title           *string
	Description     *string
	StartDate       *string
	EndDate         *string
	Location        *string
	MaxParticipants *int
	Status          *string
}

// IsEmpty reports whether the patch changes nothing
func (p *EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.StartDate == nil &&
		p.EndDate == nil && p.Location == nil && p.MaxParticipants == nil && p.Status == nil
}

// Apply copies the set fields onto e
func (p *EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.StartDate != nil {
		e.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		e.EndDate = *p.EndDate
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.MaxParticipants != nil {
		v := *p.MaxParticipants
		e.MaxParticipants = &v
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
}
