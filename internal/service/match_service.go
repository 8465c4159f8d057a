package service

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/prohmpiriya/career-passport/internal/domain"
	"github.com/prohmpiriya/career-passport/internal/dto"
	"github.com/prohmpiriya/career-passport/internal/publisher"
	"github.com/prohmpiriya/career-passport/internal/repository"
	"github.com/prohmpiriya/career-passport/pkg/telemetry"
)

// ErrOpenMatchExists is returned when the pair already has a pending or accepted match
var ErrOpenMatchExists = domain.Conflict("matches.create", "An open match already exists for this pair")

type matchService struct {
	matchRepo repository.MatchRepository
	hooks     Hooks
}

// NewMatchService creates a new MatchService
func NewMatchService(matchRepo repository.MatchRepository, hooks Hooks) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		hooks:     hooks.withDefaults(),
	}
}

// Create stores a pending match. Like applications, the open-match check is
// a read before the write and is skipped when the read fails.
func (s *matchService) Create(ctx context.Context, req *dto.CreateMatchRequest) (_ *domain.Match, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.matches.create")
	defer func() { telemetry.EndSpan(span, err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if existing, listErr := s.matchRepo.ListByWallet(ctx, req.StudentWallet); listErr == nil {
		for _, m := range existing {
			if m.StudentWallet == req.StudentWallet && m.OrgWalletAddress == req.OrgWalletAddress && m.IsOpen() {
				return nil, ErrOpenMatchExists
			}
		}
	}

	now := s.hooks.timestamp()
	match := &domain.Match{
		MatchID:          uuid.New().String(),
		StudentWallet:    req.StudentWallet,
		OrgWalletAddress: req.OrgWalletAddress,
		EventID:          req.EventID,
		Note:             req.Note,
		Status:           domain.MatchStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}

	s.hooks.emit(ctx, publisher.MatchCreated, match.MatchID, match)
	return match, nil
}

// List returns matches where the wallet is either side, newest first
func (s *matchService) List(ctx context.Context, walletAddress string) ([]*domain.Match, error) {
	wallet, err := requireWallet("walletAddress", walletAddress)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if c := compareTimestamps(matches[i].CreatedAt, matches[j].CreatedAt); c != 0 {
			return c > 0
		}
		return matches[i].MatchID < matches[j].MatchID
	})
	return matches, nil
}

func (s *matchService) UpdateStatus(ctx context.Context, matchID string, req *dto.UpdateMatchStatusRequest) (_ *domain.Match, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.matches.update_status")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	match, err := s.matchRepo.UpdateStatus(ctx, matchID, req.Status, s.hooks.timestamp())
	if err != nil {
		return nil, err
	}

	s.hooks.emit(ctx, publisher.MatchStatusChanged, match.MatchID, match)
	return match, nil
}
