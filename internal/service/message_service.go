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

type messageService struct {
	msgRepo repository.MessageRepository
	hooks   Hooks
}

// NewMessageService creates a new MessageService
func NewMessageService(msgRepo repository.MessageRepository, hooks Hooks) MessageService {
	return &messageService{
		msgRepo: msgRepo,
		hooks:   hooks.withDefaults(),
	}
}

func (s *messageService) Send(ctx context.Context, req *dto.SendMessageRequest) (_ *domain.Message, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.messages.send")
	defer func() { telemetry.EndSpan(span, err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		MessageID:       uuid.New().String(),
		SenderWallet:    req.SenderWallet,
		RecipientWallet: req.RecipientWallet,
		Content:         req.Content,
		CreatedAt:       s.hooks.timestamp(),
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.hooks.emit(ctx, publisher.MessageSent, msg.MessageID, msg)
	return msg, nil
}

func (s *messageService) List(ctx context.Context, walletAddress, peer string) ([]*domain.Message, error) {
	wallet, err := requireWallet("walletAddress", walletAddress)
	if err != nil {
		return nil, err
	}

	var msgs []*domain.Message
	if p := domain.NormalizeWallet(peer); p != "" {
		msgs, err = s.msgRepo.ListConversation(ctx, wallet, p)
	} else {
		msgs, err = s.msgRepo.ListByWallet(ctx, wallet)
	}
	if err != nil {
		return nil, err
	}

	// oldest first, ids break ties so polling clients see a stable order
	sort.SliceStable(msgs, func(i, j int) bool {
		if c := compareTimestamps(msgs[i].CreatedAt, msgs[j].CreatedAt); c != 0 {
			return c < 0
		}
		return msgs[i].MessageID < msgs[j].MessageID
	})
	return msgs, nil
}

func (s *messageService) MarkRead(ctx context.Context, messageID string) error {
	return s.msgRepo.MarkRead(ctx, messageID, s.hooks.timestamp())
}
