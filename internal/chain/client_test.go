package chain

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stampAddr = "0x1111111111111111111111111111111111111111"
	nftAddr   = "0x2222222222222222222222222222222222222222"
	userAddr  = "0x3333333333333333333333333333333333333333"
)

type methodFunc func(args []interface{}, block *big.Int) ([]interface{}, error)

// fakeBackend answers eth_call by decoding the selector against both ABIs
type fakeBackend struct {
	t       *testing.T
	abis    map[common.Address]abi.ABI
	methods map[string]methodFunc
	chainID int64
	height  uint64
	blocks  []*big.Int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	stamps, err := abi.JSON(strings.NewReader(stampManagerABI))
	require.NoError(t, err)
	nft, err := abi.JSON(strings.NewReader(nftABI))
	require.NoError(t, err)
	return &fakeBackend{
		t: t,
		abis: map[common.Address]abi.ABI{
			common.HexToAddress(stampAddr): stamps,
			common.HexToAddress(nftAddr):   nft,
		},
		methods: make(map[string]methodFunc),
		chainID: 1337,
		height:  100,
	}
}

func (f *fakeBackend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.blocks = append(f.blocks, blockNumber)

	parsed, ok := f.abis[*call.To]
	require.True(f.t, ok, "unexpected contract %s", call.To.Hex())
	method, err := parsed.MethodById(call.Data[:4])
	require.NoError(f.t, err)
	args, err := method.Inputs.Unpack(call.Data[4:])
	require.NoError(f.t, err)

	fn, ok := f.methods[method.Name]
	require.True(f.t, ok, "no stub for %s", method.Name)
	out, err := fn(args, blockNumber)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

func (f *fakeBackend) BlockNumber(ctx context.Context) (uint64, error) {
	return f.height, nil
}

func (f *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(f.chainID), nil
}

func testConfig() Config {
	return Config{ChainID: 1337, StampManagerAddress: stampAddr, NFTContractAddress: nftAddr}
}

func TestNewClient_Validation(t *testing.T) {
	backend := newFakeBackend(t)

	cfg := testConfig()
	cfg.StampManagerAddress = "not-an-address"
	c, err := NewClient(context.Background(), backend, cfg)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	cfg = testConfig()
	cfg.NFTContractAddress = ""
	_, err = NewClient(context.Background(), backend, cfg)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	cfg = testConfig()
	cfg.ChainID = 1
	_, err = NewClient(context.Background(), backend, cfg)
	assert.ErrorIs(t, err, ErrChainIDMismatch)

	cfg = testConfig()
	cfg.ChainID = 0
	_, err = NewClient(context.Background(), backend, cfg)
	assert.NoError(t, err)
}

func TestDial_NotConfigured(t *testing.T) {
	_, err := Dial(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_StampReads(t *testing.T) {
	backend := newFakeBackend(t)
	backend.methods["getUserStamps"] = func(args []interface{}, _ *big.Int) ([]interface{}, error) {
		assert.Equal(t, common.HexToAddress(userAddr), args[0])
		return []interface{}{[]*big.Int{big.NewInt(1), big.NewInt(2)}}, nil
	}
	backend.methods["getStampMetadata"] = func(args []interface{}, _ *big.Int) ([]interface{}, error) {
		return []interface{}{"Speaker", "Acme", "talk", big.NewInt(1700000000), uint8(2)}, nil
	}
	backend.methods["getOrganizationStampCount"] = func(args []interface{}, _ *big.Int) ([]interface{}, error) {
		assert.Equal(t, "Acme", args[1])
		return []interface{}{big.NewInt(3)}, nil
	}
	backend.methods["canMintNft"] = func(args []interface{}, _ *big.Int) ([]interface{}, error) {
		return []interface{}{true}, nil
	}

	c, err := NewClient(context.Background(), backend, testConfig())
	require.NoError(t, err)
	ctx := context.Background()
	user := common.HexToAddress(userAddr)

	ids, err := c.GetUserStamps(ctx, nil, user)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, int64(2), ids[1].Int64())

	meta, err := c.GetStampMetadata(ctx, big.NewInt(42), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Speaker", meta.Name)
	assert.Equal(t, "Acme", meta.Organization)
	assert.Equal(t, uint8(2), meta.ImageType)
	assert.Equal(t, int64(42), backend.blocks[len(backend.blocks)-1].Int64())

	count, err := c.GetOrganizationStampCount(ctx, nil, user, "Acme")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count.Int64())

	can, err := c.CanMintNft(ctx, nil, user, "Acme")
	require.NoError(t, err)
	assert.True(t, can)
}

func TestClient_NFTReads(t *testing.T) {
	backend := newFakeBackend(t)
	user := common.HexToAddress(userAddr)
	backend.methods["getTotalSupply"] = func([]interface{}, *big.Int) ([]interface{}, error) {
		return []interface{}{big.NewInt(2)}, nil
	}
	backend.methods["ownerOf"] = func(args []interface{}, _ *big.Int) ([]interface{}, error) {
		return []interface{}{user}, nil
	}
	backend.methods["getTokenName"] = func([]interface{}, *big.Int) ([]interface{}, error) {
		return []interface{}{"Certificate"}, nil
	}
	backend.methods["getTokenRarity"] = func([]interface{}, *big.Int) ([]interface{}, error) {
		return []interface{}{"rare"}, nil
	}
	backend.methods["getTokenOrganizations"] = func([]interface{}, *big.Int) ([]interface{}, error) {
		return []interface{}{[]string{"Acme", "Globex"}}, nil
	}
	backend.methods["getTokenImageType"] = func([]interface{}, *big.Int) ([]interface{}, error) {
		return []interface{}{uint8(1)}, nil
	}
	backend.methods["hasPlatformNft"] = func([]interface{}, *big.Int) ([]interface{}, error) {
		return []interface{}{false}, nil
	}

	c, err := NewClient(context.Background(), backend, testConfig())
	require.NoError(t, err)
	ctx := context.Background()
	token := big.NewInt(1)

	supply, err := c.GetTotalSupply(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), supply.Int64())

	owner, err := c.OwnerOf(ctx, nil, token)
	require.NoError(t, err)
	assert.Equal(t, user, owner)

	name, err := c.GetTokenName(ctx, nil, token)
	require.NoError(t, err)
	assert.Equal(t, "Certificate", name)

	rarity, err := c.GetTokenRarity(ctx, nil, token)
	require.NoError(t, err)
	assert.Equal(t, "rare", rarity)

	orgs, err := c.GetTokenOrganizations(ctx, nil, token)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex"}, orgs)

	img, err := c.GetTokenImageType(ctx, nil, token)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), img)

	has, err := c.HasPlatformNft(ctx, nil, user)
	require.NoError(t, err)
	assert.False(t, has)

	height, err := c.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), height)
}

func TestClient_ProviderErrorPassesThrough(t *testing.T) {
	backend := newFakeBackend(t)
	backend.methods["getTotalSupply"] = func([]interface{}, *big.Int) ([]interface{}, error) {
		return nil, errors.New("execution reverted")
	}

	c, err := NewClient(context.Background(), backend, testConfig())
	require.NoError(t, err)

	_, err = c.GetTotalSupply(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, ClassCallException, Classify(err))
}
