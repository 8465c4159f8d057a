package chain

import (
	"errors"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

// ErrorClass groups provider errors by how a read should react to them
type ErrorClass int

const (
	ClassUnknown ErrorClass = iota
	ClassBlockHeight
	ClassCallException
	ClassBadData
)

func (c ErrorClass) String() string {
	switch c {
	case ClassBlockHeight:
		return "block_height"
	case ClassCallException:
		return "call_exception"
	case ClassBadData:
		return "bad_data"
	default:
		return "unknown"
	}
}

var (
	blockHeightMarkers = []string{
		"block height",
		"height mismatch",
		"header not found",
		"unknown block",
		"block not found",
		"exceeds current",
		"greater than current",
		"ahead of current",
	}
	callExceptionMarkers = []string{
		"execution reverted",
		"call_exception",
		"call exception",
		"revert",
		"invalid opcode",
	}
	badDataMarkers = []string{
		"bad_data",
		"abi: ",
		"could not decode",
		"unmarshal",
	}
)

// Classify sorts err into an ErrorClass by matching the provider message
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}
	if errors.Is(err, bind.ErrNoCode) {
		return ClassCallException
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, blockHeightMarkers):
		return ClassBlockHeight
	case containsAny(msg, callExceptionMarkers):
		return ClassCallException
	case containsAny(msg, badDataMarkers):
		return ClassBadData
	default:
		return ClassUnknown
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Ordered most specific first: the node's own height is the safest pin.
var heightPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)current\s+(?:block\s+)?(?:height|number)\s*(?:is|:|=)?\s*(0x[0-9a-f]+|\d+)`),
	regexp.MustCompile(`(?i)latest\s+(?:block\s+)?(?:height|number)?\s*(?:is|:|=)?\s*(0x[0-9a-f]+|\d+)`),
	regexp.MustCompile(`(?i)(?:exceeds|greater than|ahead of)\s+(?:current\s+)?(?:block\s+)?(?:height\s+)?(0x[0-9a-f]+|\d+)`),
	regexp.MustCompile(`(?i)height\s*(?:is|:|=)?\s*(0x[0-9a-f]+|\d+)`),
}

// ParseBlockHeight extracts a usable block height from a provider error message
func ParseBlockHeight(msg string) (*big.Int, bool) {
	for _, re := range heightPatterns {
		m := re.FindStringSubmatch(msg)
		if len(m) < 2 {
			continue
		}
		if h, ok := parseNumber(m[1]); ok {
			return h, true
		}
	}
	return nil, false
}

func parseNumber(s string) (*big.Int, bool) {
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return nil, false
		}
		return new(big.Int).SetUint64(n), true
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, false
	}
	return new(big.Int).SetUint64(n), true
}
