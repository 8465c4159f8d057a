package dto

import (
	"strings"

	"github.com/prohmpiriya/career-passport/internal/domain"
)

// CreateMatchRequest represents a new student/organization match
type CreateMatchRequest struct {
	StudentWallet    string `json:"studentWallet"`
	OrgWalletAddress string `json:"orgWalletAddress"`
	EventID          string `json:"eventId"`
	Note             string `json:"note"`
}

// Normalize lower-cases both wallets
func (r *CreateMatchRequest) Normalize() {
	r.StudentWallet = domain.NormalizeWallet(r.StudentWallet)
	r.OrgWalletAddress = domain.NormalizeWallet(r.OrgWalletAddress)
	r.EventID = strings.TrimSpace(r.EventID)
}

// Validate validates the match request
func (r *CreateMatchRequest) Validate() error {
	if r.StudentWallet == "" {
		return domain.Validation("studentWallet", "studentWallet is required")
	}
	if r.OrgWalletAddress == "" {
		return domain.Validation("orgWalletAddress", "orgWalletAddress is required")
	}
	if r.StudentWallet == r.OrgWalletAddress {
		return domain.Validation("orgWalletAddress", "a wallet cannot match with itself")
	}
	return nil
}

// UpdateMatchStatusRequest represents a match status change
type UpdateMatchStatusRequest struct {
	Status string `json:"status"`
}

// Validate validates the status change
func (r *UpdateMatchStatusRequest) Validate() error {
	r.Status = strings.TrimSpace(r.Status)
	if !domain.IsValidMatchStatus(r.Status) {
		return domain.Validation("status", "status must be one of pending, accepted, declined")
	}
	return nil
}
