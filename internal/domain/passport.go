package domain

import "time"

// Stamp is an on-chain achievement stamp, read from the StampManager contract
type Stamp struct {
	TokenID      string `json:"tokenId"`
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Category     string `json:"category"`
	CreatedAt    string `json:"createdAt"`
	ImageType    uint8  `json:"imageType"`
}

// NFT is an on-chain certificate NFT, read from the NFT contract
type NFT struct {
	TokenID       string   `json:"tokenId"`
	Name          string   `json:"name"`
	Rarity        string   `json:"rarity"`
	Organizations []string `json:"organizations"`
	ImageType     uint8    `json:"imageType"`
}

// Eligibility is the mint eligibility of a wallet for one organization
type Eligibility struct {
	Organization   string `json:"organization"`
	StampCount     uint64 `json:"stampCount"`
	CanMint        bool   `json:"canMint"`
	HasPlatformNft bool   `json:"hasPlatformNft"`
}

// ReadSource tells where passport data came from
type ReadSource string

// ReadSource values
const (
	SourceChain ReadSource = "chain"
	SourceCache ReadSource = "cache"
	SourceNone  ReadSource = "none"
)

// Snapshot is a cached copy of a chain read
type Snapshot[T any] struct {
	Data      T         `json:"data"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// PassportRead is a passport read result with its provenance
type PassportRead[T any] struct {
	Data      T
	Source    ReadSource
	Stale     bool
	FetchedAt time.Time
}
