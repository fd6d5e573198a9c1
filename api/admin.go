package api

import (
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/avdeenkov/partybook/internal/domain"
	"github.com/avdeenkov/partybook/internal/queries"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	store queries.BookingQueries
}

func NewAdminHandler(store queries.BookingQueries) *AdminHandler {
	return &AdminHandler{store: store}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.dashboard)
	router.POST("/bookings/:id/status", h.updateStatus)
	router.GET("/events", h.events)
}

type statusCounts struct {
	Pending   int
	Confirmed int
	Cancelled int
}

func (h *AdminHandler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	var bookings []domain.Booking
	var err error
	if _, refresh := c.GetQuery("refresh"); refresh {
		bookings, err = h.store.RefreshAllBookings(ctx)
	} else {
		bookings, err = h.store.AllBookings(ctx)
	}
	if err != nil {
		c.HTML(http.StatusBadGateway, "admin.tmpl", gin.H{
			"LoadError": "We couldn't load the bookings. Please try again.",
		})
		return
	}

	var counts statusCounts
	for _, b := range bookings {
		switch b.Status {
		case domain.StatusPending:
			counts.Pending++
		case domain.StatusConfirmed:
			counts.Confirmed++
		case domain.StatusCancelled:
			counts.Cancelled++
		}
	}

	statusFilter := c.Query("status")
	search := strings.ToLower(strings.TrimSpace(c.Query("q")))
	sortField := c.DefaultQuery("sort", "partyDate")
	sortDir := c.DefaultQuery("dir", "asc")

	filtered := filterBookings(bookings, domain.Status(statusFilter), search)
	sortBookings(filtered, sortField, sortDir == "desc")

	packages, _ := h.store.Packages(ctx)
	packageNames := make(map[string]string, len(packages))
	for _, pkg := range packages {
		packageNames[pkg.ID] = pkg.Name
	}

	c.HTML(http.StatusOK, "admin.tmpl", gin.H{
		"Bookings":     filtered,
		"Counts":       counts,
		"Total":        len(bookings),
		"StatusFilter": statusFilter,
		"Search":       c.Query("q"),
		"Sort":         sortField,
		"Dir":          sortDir,
		"PackageNames": packageNames,
		"Statuses":     domain.Statuses(),
		"UpdateError":  c.Query("error"),
	})
}

func (h *AdminHandler) updateStatus(c *gin.Context) {
	id := c.Param("id")
	status := domain.Status(c.PostForm("status"))

	if !status.Valid() {
		c.Redirect(http.StatusSeeOther, "/admin?error="+url.QueryEscape("Unknown booking status"))
		return
	}

	if _, err := h.store.UpdateBookingStatus(c.Request.Context(), id, status); err != nil {
		c.Redirect(http.StatusSeeOther, "/admin?error="+url.QueryEscape("Failed to update booking status"))
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin")
}

// events streams a refresh signal whenever the booking list changes, so
// the dashboard reloads after a mutation lands from any session.
func (h *AdminHandler) events(c *gin.Context) {
	sub := h.store.WatchAllBookings()
	defer sub.Close()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-sub.Updates():
			c.SSEvent("refresh", "bookings")
			return true
		}
	})
}

// filterBookings applies the status and search filters. A non-empty
// status filter matches literally, so an unrecognized value yields an
// empty list rather than silently showing everything.
func filterBookings(bookings []domain.Booking, status domain.Status, search string) []domain.Booking {
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if status != "" && b.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.CustomerName), search) &&
			!strings.Contains(strings.ToLower(b.Email), search) &&
			!strings.Contains(strings.ToLower(b.ID), search) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func sortBookings(bookings []domain.Booking, field string, desc bool) {
	less := func(i, j int) bool { return bookings[i].PartyDate < bookings[j].PartyDate }
	switch field {
	case "customerName":
		less = func(i, j int) bool {
			return strings.ToLower(bookings[i].CustomerName) < strings.ToLower(bookings[j].CustomerName)
		}
	case "createdAt":
		less = func(i, j int) bool { return bookings[i].CreatedAt < bookings[j].CreatedAt }
	}
	if desc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(bookings, less)
}
