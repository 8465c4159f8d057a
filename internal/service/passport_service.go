package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/prohmpiriya/career-passport/internal/chain"
	"github.com/prohmpiriya/career-passport/internal/domain"
	"github.com/prohmpiriya/career-passport/internal/repository"
	"github.com/prohmpiriya/career-passport/pkg/telemetry"
)

// ChainReader is the contract surface the passport reads need. *chain.Client satisfies it.
type ChainReader interface {
	chain.BlockNumberer
	GetUserStamps(ctx context.Context, block *big.Int, user common.Address) ([]*big.Int, error)
	GetStampMetadata(ctx context.Context, block *big.Int, stampID *big.Int) (chain.StampMetadata, error)
	GetOrganizationStampCount(ctx context.Context, block *big.Int, user common.Address, organization string) (*big.Int, error)
	CanMintNft(ctx context.Context, block *big.Int, user common.Address, organization string) (bool, error)
	GetTotalSupply(ctx context.Context, block *big.Int) (*big.Int, error)
	OwnerOf(ctx context.Context, block *big.Int, tokenID *big.Int) (common.Address, error)
	GetTokenName(ctx context.Context, block *big.Int, tokenID *big.Int) (string, error)
	GetTokenRarity(ctx context.Context, block *big.Int, tokenID *big.Int) (string, error)
	GetTokenOrganizations(ctx context.Context, block *big.Int, tokenID *big.Int) ([]string, error)
	GetTokenImageType(ctx context.Context, block *big.Int, tokenID *big.Int) (uint8, error)
	HasPlatformNft(ctx context.Context, block *big.Int, user common.Address) (bool, error)
}

// PassportService serves on-chain passport data, falling back to the last
// snapshot when the chain cannot be read
type PassportService interface {
	Stamps(ctx context.Context, walletAddress string) (*domain.PassportRead[[]domain.Stamp], error)
	NFTs(ctx context.Context, walletAddress string) (*domain.PassportRead[[]domain.NFT], error)
	Eligibility(ctx context.Context, walletAddress, organization string) (*domain.PassportRead[domain.Eligibility], error)
}

// PassportConfig tunes chain reads and the snapshot fallback
type PassportConfig struct {
	RetryDelay   time.Duration
	CacheTTL     time.Duration
	MaxStaleness time.Duration
	// MaxTokenScan caps the ownerOf sweep over token ids; zero means no cap
	MaxTokenScan int64
}

// snapshotReadTimeout bounds the cache lookup after the chain read ran out of time
const snapshotReadTimeout = 2 * time.Second

type passportService struct {
	chain ChainReader
	cache repository.SnapshotCache
	cfg   PassportConfig
	hooks Hooks
}

// NewPassportService creates a PassportService. reader may be nil when no
// chain is configured, in which case only snapshots are served.
func NewPassportService(reader ChainReader, cache repository.SnapshotCache, cfg PassportConfig, hooks Hooks) PassportService {
	return &passportService{
		chain: reader,
		cache: cache,
		cfg:   cfg,
		hooks: hooks.withDefaults(),
	}
}

func parseWallet(walletAddress string) (common.Address, string, error) {
	wallet := domain.NormalizeWallet(walletAddress)
	if !domain.IsWalletAddress(wallet) {
		return common.Address{}, "", domain.Validation("walletAddress", "walletAddress must be a 0x-prefixed hex address")
	}
	return common.HexToAddress(wallet), wallet, nil
}

func (s *passportService) retry(ctx context.Context, method string) chain.Retry {
	return chain.Retry{
		Blocks: s.chain,
		Delay:  s.cfg.RetryDelay,
		OnStage: func(stage string, cause error) {
			s.hooks.Logger.WithContext(ctx).Debug("chain read escalated",
				zap.String("method", method),
				zap.String("stage", stage),
				zap.Error(cause),
			)
			if s.hooks.Metrics != nil {
				s.hooks.Metrics.ChainReadRecoveries.Inc(ctx,
					telemetry.RecoveryStageAttr(stage),
					telemetry.ChainMethodAttr(method),
				)
			}
		},
	}
}

func (s *passportService) Stamps(ctx context.Context, walletAddress string) (_ *domain.PassportRead[[]domain.Stamp], err error) {
	user, wallet, err := parseWallet(walletAddress)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "service.passport.stamps")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(telemetry.WalletAttr(wallet))

	return readThrough(ctx, s, "stamps:"+wallet, []domain.Stamp{}, func(ctx context.Context) ([]domain.Stamp, bool, error) {
		ids, outcome, err := chain.Read(ctx, s.retry(ctx, "getUserStamps"), func(ctx context.Context, block *big.Int) ([]*big.Int, error) {
			return s.chain.GetUserStamps(ctx, block, user)
		})
		if err != nil || !outcome.OK() {
			return nil, false, err
		}

		stamps := make([]domain.Stamp, 0, len(ids))
		for _, id := range ids {
			meta, outcome, err := chain.Read(ctx, s.retry(ctx, "getStampMetadata"), func(ctx context.Context, block *big.Int) (chain.StampMetadata, error) {
				return s.chain.GetStampMetadata(ctx, block, id)
			})
			if err != nil {
				return nil, false, err
			}
			if outcome == chain.OutcomeRejected {
				continue
			}
			if !outcome.OK() {
				return nil, false, nil
			}
			stamps = append(stamps, domain.Stamp{
				TokenID:      id.String(),
				Name:         meta.Name,
				Organization: meta.Organization,
				Category:     meta.Category,
				CreatedAt:    formatChainTime(meta.CreatedAt),
				ImageType:    meta.ImageType,
			})
		}
		return stamps, true, nil
	})
}

func (s *passportService) NFTs(ctx context.Context, walletAddress string) (_ *domain.PassportRead[[]domain.NFT], err error) {
	user, wallet, err := parseWallet(walletAddress)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "service.passport.nfts")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(telemetry.WalletAttr(wallet))

	return readThrough(ctx, s, "nfts:"+wallet, []domain.NFT{}, func(ctx context.Context) ([]domain.NFT, bool, error) {
		supply, outcome, err := chain.Read(ctx, s.retry(ctx, "getTotalSupply"), func(ctx context.Context, block *big.Int) (*big.Int, error) {
			return s.chain.GetTotalSupply(ctx, block)
		})
		if err != nil || !outcome.OK() || supply == nil {
			return nil, false, err
		}

		last := supply.Int64()
		if s.cfg.MaxTokenScan > 0 && last > s.cfg.MaxTokenScan {
			s.hooks.Logger.WithContext(ctx).Warn("token scan truncated",
				zap.Int64("supply", last),
				zap.Int64("max", s.cfg.MaxTokenScan),
			)
			last = s.cfg.MaxTokenScan
		}

		nfts := make([]domain.NFT, 0)
		for i := int64(1); i <= last; i++ {
			tokenID := big.NewInt(i)
			owner, outcome, err := chain.Read(ctx, s.retry(ctx, "ownerOf"), func(ctx context.Context, block *big.Int) (common.Address, error) {
				return s.chain.OwnerOf(ctx, block, tokenID)
			})
			if err != nil {
				return nil, false, err
			}
			if outcome == chain.OutcomeRejected {
				continue
			}
			if !outcome.OK() {
				return nil, false, nil
			}
			if owner != user {
				continue
			}

			nft, complete, err := s.readToken(ctx, tokenID)
			if err != nil || !complete {
				return nil, false, err
			}
			nfts = append(nfts, nft)
		}
		return nfts, true, nil
	})
}

// readToken reads the token attributes. Attributes the contract rejects stay
// zero; complete is false when any read degraded.
func (s *passportService) readToken(ctx context.Context, tokenID *big.Int) (nft domain.NFT, complete bool, err error) {
	nft = domain.NFT{TokenID: tokenID.String(), Organizations: []string{}}
	complete = true
	track := func(outcome chain.Outcome) {
		if outcome != chain.OutcomeRejected && !outcome.OK() {
			complete = false
		}
	}

	name, outcome, err := chain.Read(ctx, s.retry(ctx, "getTokenName"), func(ctx context.Context, block *big.Int) (string, error) {
		return s.chain.GetTokenName(ctx, block, tokenID)
	})
	if err != nil {
		return nft, false, err
	}
	track(outcome)
	rarity, outcome, err := chain.Read(ctx, s.retry(ctx, "getTokenRarity"), func(ctx context.Context, block *big.Int) (string, error) {
		return s.chain.GetTokenRarity(ctx, block, tokenID)
	})
	if err != nil {
		return nft, false, err
	}
	track(outcome)
	orgs, outcome, err := chain.Read(ctx, s.retry(ctx, "getTokenOrganizations"), func(ctx context.Context, block *big.Int) ([]string, error) {
		return s.chain.GetTokenOrganizations(ctx, block, tokenID)
	})
	if err != nil {
		return nft, false, err
	}
	track(outcome)
	imageType, outcome, err := chain.Read(ctx, s.retry(ctx, "getTokenImageType"), func(ctx context.Context, block *big.Int) (uint8, error) {
		return s.chain.GetTokenImageType(ctx, block, tokenID)
	})
	if err != nil {
		return nft, false, err
	}
	track(outcome)

	nft.Name = name
	nft.Rarity = rarity
	nft.ImageType = imageType
	if orgs != nil {
		nft.Organizations = orgs
	}
	return nft, complete, nil
}

func (s *passportService) Eligibility(ctx context.Context, walletAddress, organization string) (_ *domain.PassportRead[domain.Eligibility], err error) {
	user, wallet, err := parseWallet(walletAddress)
	if err != nil {
		return nil, err
	}
	organization = strings.TrimSpace(organization)
	if organization == "" {
		return nil, domain.Validation("organization", "organization is required")
	}

	ctx, span := telemetry.StartSpan(ctx, "service.passport.eligibility")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(telemetry.WalletAttr(wallet))

	empty := domain.Eligibility{Organization: organization}
	return readThrough(ctx, s, "eligibility:"+wallet+":"+organization, empty, func(ctx context.Context) (domain.Eligibility, bool, error) {
		count, outcome, err := chain.Read(ctx, s.retry(ctx, "getOrganizationStampCount"), func(ctx context.Context, block *big.Int) (*big.Int, error) {
			return s.chain.GetOrganizationStampCount(ctx, block, user, organization)
		})
		if err != nil || !outcome.OK() || count == nil {
			return empty, false, err
		}
		canMint, outcome, err := chain.Read(ctx, s.retry(ctx, "canMintNft"), func(ctx context.Context, block *big.Int) (bool, error) {
			return s.chain.CanMintNft(ctx, block, user, organization)
		})
		if err != nil || !outcome.OK() {
			return empty, false, err
		}
		hasPlatform, outcome, err := chain.Read(ctx, s.retry(ctx, "hasPlatformNft"), func(ctx context.Context, block *big.Int) (bool, error) {
			return s.chain.HasPlatformNft(ctx, block, user)
		})
		if err != nil || !outcome.OK() {
			return empty, false, err
		}

		return domain.Eligibility{
			Organization:   organization,
			StampCount:     count.Uint64(),
			CanMint:        canMint,
			HasPlatformNft: hasPlatform,
		}, true, nil
	})
}

// readThrough serves fetch from the chain and records the snapshot, or falls
// back to the cached snapshot when the chain is absent, the read degraded or
// the read ran out of time. fetch reports ok=false for a degraded read; its
// error is only a context error. Cancellation is returned as is.
func readThrough[T any](
	ctx context.Context,
	s *passportService,
	key string,
	empty T,
	fetch func(ctx context.Context) (T, bool, error),
) (*domain.PassportRead[T], error) {
	log := s.hooks.Logger.WithContext(ctx)

	if s.chain != nil {
		data, ok, err := fetch(ctx)
		switch {
		case err != nil && !errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case err != nil:
			log.Warn("chain read timed out, using snapshot", zap.String("key", key))
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), snapshotReadTimeout)
			defer cancel()
		case ok:
			now := s.hooks.Now().UTC()
			s.storeSnapshot(ctx, key, domain.Snapshot[T]{Data: data, FetchedAt: now})
			return &domain.PassportRead[T]{Data: data, Source: domain.SourceChain, FetchedAt: now}, nil
		default:
			log.Info("chain read degraded, using snapshot", zap.String("key", key))
		}
	}

	none := &domain.PassportRead[T]{Data: empty, Source: domain.SourceNone}
	if s.cache == nil {
		return none, nil
	}

	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("snapshot cache read failed", zap.String("key", key), zap.Error(err))
		return none, nil
	}
	if !found {
		return none, nil
	}

	var snap domain.Snapshot[T]
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Warn("snapshot is corrupt", zap.String("key", key), zap.Error(err))
		return none, nil
	}

	if s.hooks.Metrics != nil {
		s.hooks.Metrics.CacheFallbacks.Inc(ctx, telemetry.ReadSourceAttr(string(domain.SourceCache)))
	}
	stale := s.cfg.MaxStaleness > 0 && s.hooks.Now().Sub(snap.FetchedAt) > s.cfg.MaxStaleness
	return &domain.PassportRead[T]{
		Data:      snap.Data,
		Source:    domain.SourceCache,
		Stale:     stale,
		FetchedAt: snap.FetchedAt,
	}, nil
}

func (s *passportService) storeSnapshot(ctx context.Context, key string, snap interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err == nil {
		err = s.cache.Set(ctx, key, raw, s.cfg.CacheTTL)
	}
	if err != nil {
		s.hooks.Logger.WithContext(ctx).Warn("snapshot cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func formatChainTime(ts *big.Int) string {
	if ts == nil || ts.Sign() <= 0 || !ts.IsInt64() {
		return ""
	}
	return time.Unix(ts.Int64(), 0).UTC().Format(time.RFC3339)
}
