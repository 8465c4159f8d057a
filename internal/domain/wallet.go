package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeWallet trims and lower-cases a wallet address
func NormalizeWallet(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// IsWalletAddress reports whether addr is a 20-byte hex address
func IsWalletAddress(addr string) bool {
	return common.IsHexAddress(strings.TrimSpace(addr))
}
