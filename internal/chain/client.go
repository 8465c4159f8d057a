package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	ErrNotConfigured    = errors.New("chain client not configured")
	ErrInvalidAddress   = errors.New("invalid contract address")
	ErrChainIDMismatch  = errors.New("chain id mismatch")
	ErrUnexpectedResult = errors.New("unexpected contract result")
)

// Config holds what is needed to reach the contracts
type Config struct {
	RPCURL              string
	ChainID             int64
	StampManagerAddress string
	NFTContractAddress  string
	DialTimeout         time.Duration
}

// Backend is the node surface the client uses. *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractCaller
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// StampMetadata is the decoded getStampMetadata result
type StampMetadata struct {
	Name         string
	Organization string
	Category     string
	CreatedAt    *big.Int
	ImageType    uint8
}

// Client reads the StampManager and NFT contracts
type Client struct {
	backend Backend
	stamps  *bind.BoundContract
	nft     *bind.BoundContract
	closer  func()
}

// Dial connects to cfg.RPCURL and binds both contracts
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, ErrNotConfigured
	}
	if err := validateAddresses(cfg); err != nil {
		return nil, err
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc: %w", err)
	}

	c, err := NewClient(ctx, eth, cfg)
	if err != nil {
		eth.Close()
		return nil, err
	}
	c.closer = eth.Close
	return c, nil
}

// NewClient binds both contracts on backend. Either address failing
// validation leaves no contract bound. A configured chain id must match the
// node's.
func NewClient(ctx context.Context, backend Backend, cfg Config) (*Client, error) {
	if err := validateAddresses(cfg); err != nil {
		return nil, err
	}

	if cfg.ChainID != 0 {
		id, err := backend.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read chain id: %w", err)
		}
		if id.Cmp(big.NewInt(cfg.ChainID)) != 0 {
			return nil, fmt.Errorf("%w: configured %d, node reports %s", ErrChainIDMismatch, cfg.ChainID, id)
		}
	}

	stampsABI, err := abi.JSON(strings.NewReader(stampManagerABI))
	if err != nil {
		return nil, fmt.Errorf("parse stamp manager abi: %w", err)
	}
	nftParsed, err := abi.JSON(strings.NewReader(nftABI))
	if err != nil {
		return nil, fmt.Errorf("parse nft abi: %w", err)
	}

	return &Client{
		backend: backend,
		stamps:  bind.NewBoundContract(common.HexToAddress(cfg.StampManagerAddress), stampsABI, backend, nil, nil),
		nft:     bind.NewBoundContract(common.HexToAddress(cfg.NFTContractAddress), nftParsed, backend, nil, nil),
	}, nil
}

func validateAddresses(cfg Config) error {
	if !common.IsHexAddress(cfg.StampManagerAddress) {
		return fmt.Errorf("%w: stamp manager %q", ErrInvalidAddress, cfg.StampManagerAddress)
	}
	if !common.IsHexAddress(cfg.NFTContractAddress) {
		return fmt.Errorf("%w: nft contract %q", ErrInvalidAddress, cfg.NFTContractAddress)
	}
	return nil
}

// Close releases the RPC connection when the client owns it
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// BlockNumber returns the node's current height
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.backend.BlockNumber(ctx)
}

func call(ctx context.Context, contract *bind.BoundContract, block *big.Int, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, BlockNumber: block}
	if err := contract.Call(opts, &out, method, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func single[T any](out []interface{}, method string) (T, error) {
	var zero T
	if len(out) == 0 {
		return zero, fmt.Errorf("%w: %s returned nothing", ErrUnexpectedResult, method)
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T", ErrUnexpectedResult, method, out[0])
	}
	return v, nil
}

// GetUserStamps returns the stamp ids held by user
func (c *Client) GetUserStamps(ctx context.Context, block *big.Int, user common.Address) ([]*big.Int, error) {
	out, err := call(ctx, c.stamps, block, "getUserStamps", user)
	if err != nil {
		return nil, err
	}
	return single[[]*big.Int](out, "getUserStamps")
}

// GetStampMetadata returns the metadata of one stamp
func (c *Client) GetStampMetadata(ctx context.Context, block *big.Int, stampID *big.Int) (StampMetadata, error) {
	out, err := call(ctx, c.stamps, block, "getStampMetadata", stampID)
	if err != nil {
		return StampMetadata{}, err
	}
	if len(out) != 5 {
		return StampMetadata{}, fmt.Errorf("%w: getStampMetadata returned %d values", ErrUnexpectedResult, len(out))
	}

	var m StampMetadata
	var ok [5]bool
	m.Name, ok[0] = out[0].(string)
	m.Organization, ok[1] = out[1].(string)
	m.Category, ok[2] = out[2].(string)
	m.CreatedAt, ok[3] = out[3].(*big.Int)
	m.ImageType, ok[4] = out[4].(uint8)
	for i, good := range ok {
		if !good {
			return StampMetadata{}, fmt.Errorf("%w: getStampMetadata field %d is %T", ErrUnexpectedResult, i, out[i])
		}
	}
	return m, nil
}

// GetOrganizationStampCount returns how many stamps of organization user holds
func (c *Client) GetOrganizationStampCount(ctx context.Context, block *big.Int, user common.Address, organization string) (*big.Int, error) {
	out, err := call(ctx, c.stamps, block, "getOrganizationStampCount", user, organization)
	if err != nil {
		return nil, err
	}
	return single[*big.Int](out, "getOrganizationStampCount")
}

// CanMintNft reports whether user may mint the organization certificate
func (c *Client) CanMintNft(ctx context.Context, block *big.Int, user common.Address, organization string) (bool, error) {
	out, err := call(ctx, c.stamps, block, "canMintNft", user, organization)
	if err != nil {
		return false, err
	}
	return single[bool](out, "canMintNft")
}

// GetTotalSupply returns the number of minted NFTs
func (c *Client) GetTotalSupply(ctx context.Context, block *big.Int) (*big.Int, error) {
	out, err := call(ctx, c.nft, block, "getTotalSupply")
	if err != nil {
		return nil, err
	}
	return single[*big.Int](out, "getTotalSupply")
}

// OwnerOf returns the owner of tokenID
func (c *Client) OwnerOf(ctx context.Context, block *big.Int, tokenID *big.Int) (common.Address, error) {
	out, err := call(ctx, c.nft, block, "ownerOf", tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return single[common.Address](out, "ownerOf")
}

// GetTokenName returns the certificate name of tokenID
func (c *Client) GetTokenName(ctx context.Context, block *big.Int, tokenID *big.Int) (string, error) {
	out, err := call(ctx, c.nft, block, "getTokenName", tokenID)
	if err != nil {
		return "", err
	}
	return single[string](out, "getTokenName")
}

// GetTokenRarity returns the rarity label of tokenID
func (c *Client) GetTokenRarity(ctx context.Context, block *big.Int, tokenID *big.Int) (string, error) {
	out, err := call(ctx, c.nft, block, "getTokenRarity", tokenID)
	if err != nil {
		return "", err
	}
	return single[string](out, "getTokenRarity")
}

// GetTokenOrganizations returns the organizations credited on tokenID
func (c *Client) GetTokenOrganizations(ctx context.Context, block *big.Int, tokenID *big.Int) ([]string, error) {
	out, err := call(ctx, c.nft, block, "getTokenOrganizations", tokenID)
	if err != nil {
		return nil, err
	}
	return single[[]string](out, "getTokenOrganizations")
}

// GetTokenImageType returns the image variant of tokenID
func (c *Client) GetTokenImageType(ctx context.Context, block *big.Int, tokenID *big.Int) (uint8, error) {
	out, err := call(ctx, c.nft, block, "getTokenImageType", tokenID)
	if err != nil {
		return 0, err
	}
	return single[uint8](out, "getTokenImageType")
}

// HasPlatformNft reports whether user owns the platform certificate
func (c *Client) HasPlatformNft(ctx context.Context, block *big.Int, user common.Address) (bool, error) {
	out, err := call(ctx, c.nft, block, "hasPlatformNft", user)
	if err != nil {
		return false, err
	}
	return single[bool](out, "hasPlatformNft")
}
