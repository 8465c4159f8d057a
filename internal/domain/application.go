package domain

// Application is a student's application to an event
type Application struct {
	ApplicationID   string `json:"applicationId" dynamodbav:"applicationId"`
	EventID         string `json:"eventId" dynamodbav:"eventId"`
	WalletAddress   string `json:"walletAddress" dynamodbav:"walletAddress"`
	ApplicationText string `json:"applicationText" dynamodbav:"applicationText"`
	AppliedAt       string `json:"appliedAt" dynamodbav:"appliedAt"`
	Status          string `json:"status" dynamodbav:"status"` // pending, approved, rejected
	UpdatedAt       string `json:"updatedAt,omitempty" dynamodbav:"updatedAt,omitempty"`
}

// ApplicationStatus constants
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// IsValidApplicationStatus reports whether s is a known application status
func IsValidApplicationStatus(s string) bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}
