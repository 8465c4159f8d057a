package dto

import (
	"strings"

	"github.com/prohmpiriya/career-passport/internal/domain"
)

// ApplyRequest represents a student's application to an event
type ApplyRequest struct {
	WalletAddress   string `json:"walletAddress"`
	ApplicationText string `json:"applicationText"`
}

// Normalize lower-cases the wallet
func (r *ApplyRequest) Normalize() {
	r.WalletAddress = domain.NormalizeWallet(r.WalletAddress)
}

// Validate validates the apply request
func (r *ApplyRequest) Validate() error {
	if r.WalletAddress == "" {
		return domain.Validation("walletAddress", "walletAddress is required")
	}
	return nil
}

// UpdateApplicationStatusRequest represents an application status change
type UpdateApplicationStatusRequest struct {
	Status string `json:"status"`
}

// Validate validates the status change
func (r *UpdateApplicationStatusRequest) Validate() error {
	r.Status = strings.TrimSpace(r.Status)
	if !domain.IsValidApplicationStatus(r.Status) {
		return domain.Validation("status", "status must be one of pending, approved, rejected")
	}
	return nil
}
