package domain

// Match links a student with an organization
type Match struct {
	MatchID          string `json:"matchId" dynamodbav:"matchId"`
	StudentWallet    string `json:"studentWallet" dynamodbav:"studentWallet"`
	OrgWalletAddress string `json:"orgWalletAddress" dynamodbav:"orgWalletAddress"`
	EventID          string `json:"eventId,omitempty" dynamodbav:"eventId,omitempty"`
	Note             string `json:"note,omitempty" dynamodbav:"note,omitempty"`
	Status           string `json:"status" dynamodbav:"status"` // pending, accepted, declined
	CreatedAt        string `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt        string `json:"updatedAt" dynamodbav:"updatedAt"`
}

// MatchStatus constants
const (
	MatchStatusPending  = "pending"
	MatchStatusAccepted = "accepted"
	MatchStatusDeclined = "declined"
)

// IsValidMatchStatus reports whether s is a known match status
func IsValidMatchStatus(s string) bool {
	switch s {
	case MatchStatusPending, MatchStatusAccepted, MatchStatusDeclined:
		return true
	}
	return false
}

// IsOpen reports whether the match still blocks a new one for the same pair
func (m *Match) IsOpen() bool {
	return m.Status == MatchStatusPending || m.Status == MatchStatusAccepted
}
