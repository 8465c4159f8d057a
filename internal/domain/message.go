package domain

// Message is a direct message between two wallets
type Message struct {
	MessageID       string `json:"messageId" dynamodbav:"messageId"`
	SenderWallet    string `json:"senderWallet" dynamodbav:"senderWallet"`
	RecipientWallet string `json:"recipientWallet" dynamodbav:"recipientWallet"`
	Content         string `json:"content" dynamodbav:"content"`
	Read            bool   `json:"read" dynamodbav:"read"`
	CreatedAt       string `json:"createdAt" dynamodbav:"createdAt"`
	ReadAt          string `json:"readAt,omitempty" dynamodbav:"readAt,omitempty"`
}

// Involves reports whether wallet is the sender or the recipient
func (m *Message) Involves(wallet string) bool {
	return m.SenderWallet == wallet || m.RecipientWallet == wallet
}

// Between reports whether the message was exchanged by a and b, in either direction
func (m *Message) Between(a, b string) bool {
	return (m.SenderWallet == a && m.RecipientWallet == b) ||
		(m.SenderWallet == b && m.RecipientWallet == a)
}
