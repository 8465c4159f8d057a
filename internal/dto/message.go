package dto

import (
	"strings"

	"github.com/prohmpiriya/career-passport/internal/domain"
)

// MaxMessageLength bounds message content, in bytes
const MaxMessageLength = 4000

// SendMessageRequest represents a new direct message
type SendMessageRequest struct {
	SenderWallet    string `json:"senderWallet"`
	RecipientWallet string `json:"recipientWallet"`
	Content         string `json:"content"`
}

// Normalize lower-cases both wallets
func (r *SendMessageRequest) Normalize() {
	r.SenderWallet = domain.NormalizeWallet(r.SenderWallet)
	r.RecipientWallet = domain.NormalizeWallet(r.RecipientWallet)
}

// Validate validates the message request
func (r *SendMessageRequest) Validate() error {
	if r.SenderWallet == "" {
		return domain.Validation("senderWallet", "senderWallet is required")
	}
	if r.RecipientWallet == "" {
		return domain.Validation("recipientWallet", "recipientWallet is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return domain.Validation("content", "content is required")
	}
	if len(r.Content) > MaxMessageLength {
		return domain.Validation("content", "content is too long")
	}
	return nil
}
