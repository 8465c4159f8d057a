package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/prohmpiriya/career-passport/internal/domain"
	"github.com/prohmpiriya/career-passport/internal/dto"
	"github.com/prohmpiriya/career-passport/internal/publisher"
	"github.com/prohmpiriya/career-passport/internal/repository"
	"github.com/prohmpiriya/career-passport/pkg/telemetry"
)

// eventService implements the EventService interface
type eventService struct {
	eventRepo repository.EventRepository
	hooks     Hooks
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repository.EventRepository, hooks Hooks) EventService {
	return &eventService{
		eventRepo: eventRepo,
		hooks:     hooks.withDefaults(),
	}
}

// CreateEvent validates the request and stores a new event
func (s *eventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (_ *domain.Event, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.events.create")
	defer func() { telemetry.EndSpan(span, err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.hooks.timestamp()
	event := &domain.Event{
		EventID:          uuid.New().String(),
		OrgWalletAddress: req.OrgWalletAddress,
		Title:            req.Title,
		Description:      req.Description,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Location:         req.Location,
		MaxParticipants:  req.MaxParticipants,
		Status:           domain.EventStatusUpcoming,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.Status != "" {
		event.Status = req.Status
	}
	span.SetAttributes(telemetry.EventIDAttr(event.EventID))

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.hooks.emit(ctx, publisher.EventCreated, event.EventID, event)
	return event, nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	return s.eventRepo.GetByID(ctx, eventID)
}

// ListEvents lists events, newest first
func (s *eventService) ListEvents(ctx context.Context, orgWalletAddress string) ([]*domain.Event, error) {
	var (
		events []*domain.Event
		err    error
	)
	if org := domain.NormalizeWallet(orgWalletAddress); org != "" {
		events, err = s.eventRepo.ListByOrg(ctx, org)
	} else {
		events, err = s.eventRepo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		if c := compareTimestamps(events[i].CreatedAt, events[j].CreatedAt); c != 0 {
			return c > 0
		}
		return events[i].EventID < events[j].EventID
	})
	return events, nil
}

// UpdateEvent applies the allow-listed fields of req
func (s *eventService) UpdateEvent(ctx context.Context, eventID string, req *dto.UpdateEventRequest) (_ *domain.Event, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.events.update")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(telemetry.EventIDAttr(eventID))

	patch, err := req.ToPatch()
	if err != nil {
		return nil, err
	}

	event, err := s.eventRepo.Update(ctx, eventID, patch, s.hooks.timestamp())
	if err != nil {
		return nil, err
	}

	s.hooks.emit(ctx, publisher.EventUpdated, event.EventID, event)
	return event, nil
}

// DeleteEvent removes an event. Deleting a missing event succeeds.
func (s *eventService) DeleteEvent(ctx context.Context, eventID string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.events.delete")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(telemetry.EventIDAttr(eventID))

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return err
	}

	s.hooks.emit(ctx, publisher.EventDeleted, eventID, map[string]string{"eventId": eventID})
	return nil
}

// applicationService implements the ApplicationService interface
type applicationService struct {
	appRepo repository.ApplicationRepository
	hooks   Hooks
}

// ErrAlreadyApplied is returned when the wallet already applied to the event
var ErrAlreadyApplied = domain.Conflict("applications.apply", "Already applied to this event")

// NewApplicationService creates a new ApplicationService
func NewApplicationService(appRepo repository.ApplicationRepository, hooks Hooks) ApplicationService {
	return &applicationService{
		appRepo: appRepo,
		hooks:   hooks.withDefaults(),
	}
}

// Apply records a pending application. The duplicate check reads the
// wallet's applications first; when that read fails the write goes ahead.
func (s *applicationService) Apply(ctx context.Context, eventID string, req *dto.ApplyRequest) (_ *domain.Application, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.applications.apply")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(telemetry.EventIDAttr(eventID))

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, listErr := s.appRepo.ListByWallet(ctx, req.WalletAddress)
	if listErr == nil {
		for _, app := range existing {
			if app.EventID == eventID {
				return nil, ErrAlreadyApplied
			}
		}
	} else {
		span.SetAttributes(attribute.Bool("duplicate_check.skipped", true))
	}

	app := &domain.Application{
		ApplicationID:   uuid.New().String(),
		EventID:         eventID,
		WalletAddress:   req.WalletAddress,
		ApplicationText: req.ApplicationText,
		AppliedAt:       s.hooks.timestamp(),
		Status:          domain.ApplicationStatusPending,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	if s.hooks.Metrics != nil {
		s.hooks.Metrics.ApplicationsSubmitted.Inc(ctx, telemetry.EventIDAttr(eventID))
	}
	s.hooks.emit(ctx, publisher.ApplicationSubmitted, app.ApplicationID, app)
	return app, nil
}

// ListByEvent lists an event's applications, oldest first
func (s *applicationService) ListByEvent(ctx context.Context, eventID string) ([]*domain.Application, error) {
	apps, err := s.appRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	sortApplications(apps)
	return apps, nil
}

// ListByWallet lists a wallet's applications, oldest first
func (s *applicationService) ListByWallet(ctx context.Context, walletAddress string) ([]*domain.Application, error) {
	wallet, err := requireWallet("walletAddress", walletAddress)
	if err != nil {
		return nil, err
	}
	apps, err := s.appRepo.ListByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	sortApplications(apps)
	return apps, nil
}

func sortApplications(apps []*domain.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		if c := compareTimestamps(apps[i].AppliedAt, apps[j].AppliedAt); c != 0 {
			return c < 0
		}
		return apps[i].ApplicationID < apps[j].ApplicationID
	})
}

// UpdateStatus changes an application's status
func (s *applicationService) UpdateStatus(ctx context.Context, applicationID string, req *dto.UpdateApplicationStatusRequest) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.applications.update_status")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := req.Validate(); err != nil {
		return err
	}
	span.SetAttributes(telemetry.ApplicationStatusAttr(req.Status))
	if err := s.appRepo.UpdateStatus(ctx, applicationID, req.Status, s.hooks.timestamp()); err != nil {
		return err
	}

	s.hooks.emit(ctx, publisher.ApplicationStatusChanged, applicationID, map[string]string{
		"applicationId": applicationID,
		"status":        req.Status,
	})
	return nil
}
