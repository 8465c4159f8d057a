package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/career-passport/internal/domain"
	"github.com/prohmpiriya/career-passport/internal/dto"
	"github.com/prohmpiriya/career-passport/internal/service"
	"github.com/prohmpiriya/career-passport/pkg/response"
)

// EventHandler handles event and event application HTTP requests
type EventHandler struct {
	eventService service.EventService
	appService   service.ApplicationService
	responder
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService, appService service.ApplicationService, opts Options) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		appService:   appService,
		responder:    newResponder(opts),
	}
}

// Create handles POST /events
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c)
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err, "create event")
		return
	}

	c.JSON(http.StatusCreated, response.Success("event", event))
}

// List handles GET /events?orgWalletAddress=
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.eventService.ListEvents(c.Request.Context(), c.Query("orgWalletAddress"))
	if err != nil {
		if !h.degraded(c, err, "events") {
			h.fail(c, err, "list events")
			return
		}
		events = []*domain.Event{}
	}

	c.JSON(http.StatusOK, response.Success("events", events))
}

// Get handles GET /events/:eventId
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.eventService.GetEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		h.fail(c, err, "get event")
		return
	}

	c.JSON(http.StatusOK, response.Success("event", event))
}

// Update handles PATCH /events/:eventId
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c)
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), c.Param("eventId"), &req)
	if err != nil {
		h.fail(c, err, "update event")
		return
	}

	c.JSON(http.StatusOK, response.Success("event", event))
}

// Delete handles DELETE /events/:eventId
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.eventService.DeleteEvent(c.Request.Context(), c.Param("eventId")); err != nil {
		h.fail(c, err, "delete event")
		return
	}

	c.JSON(http.StatusOK, response.OK())
}

// Apply handles POST /events/:eventId/apply
func (h *EventHandler) Apply(c *gin.Context) {
	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c)
		return
	}

	app, err := h.appService.Apply(c.Request.Context(), c.Param("eventId"), &req)
	if err != nil {
		h.fail(c, err, "submit application")
		return
	}

	c.JSON(http.StatusCreated, response.Success("application", app))
}

// ListApplications handles GET /events/:eventId/applications
func (h *EventHandler) ListApplications(c *gin.Context) {
	apps, err := h.appService.ListByEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		if !h.degraded(c, err, "applications") {
			h.fail(c, err, "list applications")
			return
		}
		apps = []*domain.Application{}
	}

	c.JSON(http.StatusOK, response.Success("applications", apps))
}

// ListWalletApplications handles GET /events/applications?walletAddress=
func (h *EventHandler) ListWalletApplications(c *gin.Context) {
	apps, err := h.appService.ListByWallet(c.Request.Context(), c.Query("walletAddress"))
	if err != nil {
		if !h.degraded(c, err, "applications") {
			h.fail(c, err, "list applications")
			return
		}
		apps = []*domain.Application{}
	}

	c.JSON(http.StatusOK, response.Success("applications", apps))
}

// UpdateApplicationStatus handles PATCH /events/applications/:applicationId/status
func (h *EventHandler) UpdateApplicationStatus(c *gin.Context) {
	var req dto.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c)
		return
	}

	if err := h.appService.UpdateStatus(c.Request.Context(), c.Param("applicationId"), &req); err != nil {
		h.fail(c, err, "update application status")
		return
	}

	c.JSON(http.StatusOK, response.OK())
}
