package dto

import (
	"strings"

	"github.com/prohmpiriya/career-passport/internal/domain"
)

// CreateEventRequest represents the request to create an event
type CreateEventRequest struct {
	Title            string `json:"title"`
	OrgWalletAddress string `json:"orgWalletAddress"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	Description      string `json:"description"`
	Location         string `json:"location"`
	MaxParticipants  *int   `json:"maxParticipants"`
	Status           string `json:"status"`
}

// Normalize trims text fields and lower-cases the wallet
func (r *CreateEventRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.OrgWalletAddress = domain.NormalizeWallet(r.OrgWalletAddress)
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = strings.TrimSpace(r.EndDate)
	r.Status = strings.TrimSpace(r.Status)
}

// Validate validates the create event request
func (r *CreateEventRequest) Validate() error {
	if r.Title == "" {
		return domain.Validation("title", "title is required")
	}
	if r.OrgWalletAddress == "" {
		return domain.Validation("orgWalletAddress", "orgWalletAddress is required")
	}
	if r.StartDate == "" {
		return domain.Validation("startDate", "startDate is required")
	}
	if r.EndDate == "" {
		return domain.Validation("endDate", "endDate is required")
	}
	if r.MaxParticipants != nil && *r.MaxParticipants < 0 {
		return domain.Validation("maxParticipants", "maxParticipants must not be negative")
	}
	if r.Status != "" && !domain.IsValidEventStatus(r.Status) {
		return domain.Validation("status", "status must be one of upcoming, active, completed, cancelled")
	}
	return nil
}

// UpdateEventRequest represents a partial event update; unknown JSON fields are ignored
type UpdateEventRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	StartDate       *string `json:"startDate"`
	EndDate         *string `json:"endDate"`
	Location        *string `json:"location"`
	MaxParticipants *int    `json:"maxParticipants"`
	Status          *string `json:"status"`
}

// ToPatch validates the request and converts it to a domain patch
func (r *UpdateEventRequest) ToPatch() (*domain.EventPatch, error) {
	patch := &domain.EventPatch{
		Title:           r.Title,
		Description:     r.Description,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Location:        r.Location,
		MaxParticipants: r.MaxParticipants,
		Status:          r.Status,
	}
	if patch.IsEmpty() {
		return nil, domain.Validation("", "no valid fields to update")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return nil, domain.Validation("title", "title must not be empty")
	}
	if r.MaxParticipants != nil && *r.MaxParticipants < 0 {
		return nil, domain.Validation("maxParticipants", "maxParticipants must not be negative")
	}
	if r.Status != nil && !domain.IsValidEventStatus(*r.Status) {
		return nil, domain.Validation("status", "status must be one of upcoming, active, completed, cancelled")
	}
	return patch, nil
}
