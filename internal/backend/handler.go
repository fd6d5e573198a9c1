package backend

import (
	"errors"
	"net/http"

	"github.com/avdeenkov/partybook/internal/domain"
	"github.com/gin-gonic/gin"
)

// Handler exposes a Client over the JSON REST surface that HTTPClient
// consumes. The dev server mounts it around Memory; tests use it to put a
// real wire between HTTPClient and a fake service.
type Handler struct {
	client Client
}

func NewHandler(client Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) Register(router *gin.RouterGroup) {
	router.GET("/packages", h.listPackages)
	router.GET("/bookings", h.listBookings)
	router.GET("/bookings/:id", h.getBooking)
	router.POST("/bookings", h.createBooking)
	router.PATCH("/bookings/:id/status", h.updateStatus)
}

func (h *Handler) listPackages(c *gin.Context) {
	packages, err := h.client.GetPackages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, packages)
}

func (h *Handler) listBookings(c *gin.Context) {
	ctx := c.Request.Context()
	if email, ok := c.GetQuery("email"); ok {
		bookings, err := h.client.GetBookingsByEmail(ctx, email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, bookings)
		return
	}

	bookings, err := h.client.GetAllBookings(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) getBooking(c *gin.Context) {
	booking, err := h.client.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *Handler) createBooking(c *gin.Context) {
	var input CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.client.CreateBooking(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req struct {
		Status domain.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.client.UpdateBookingStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, booking)
}
