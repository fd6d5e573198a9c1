// Package api holds the gin handlers for the customer-facing pages and
// the admin view. Handlers consume the query cache, never the backend
// client directly; a failed remote call renders inline on the page that
// issued it.
package api

import (
	"errors"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"github.com/avdeenkov/partybook/internal/backend"
	"github.com/avdeenkov/partybook/internal/domain"
	"github.com/avdeenkov/partybook/internal/form"
	"github.com/avdeenkov/partybook/internal/queries"
	"github.com/gin-gonic/gin"
)

type PageHandler struct {
	store queries.BookingQueries
}

func NewPageHandler(store queries.BookingQueries) *PageHandler {
	return &PageHandler{store: store}
}

func (h *PageHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.landing)
	router.GET("/book", h.bookForm)
	router.POST("/book", h.submitBooking)
	router.GET("/confirmation/:id", h.confirmation)
	router.GET("/my-bookings", h.myBookings)
}

// TemplateFuncs are the formatting helpers the page templates use.
// Register them on the router before loading templates.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"partyDate": func(b domain.Booking) string {
			t, err := b.PartyTime()
			if err != nil {
				return b.PartyDate
			}
			return t.Format("Monday, January 2, 2006")
		},
		"createdDate": func(b domain.Booking) string {
			return b.CreatedTime().Format("Jan 2, 2006")
		},
	}
}

func (h *PageHandler) landing(c *gin.Context) {
	ctx := c.Request.Context()

	var packages []domain.Package
	var err error
	if _, refresh := c.GetQuery("refresh"); refresh {
		packages, err = h.store.RefreshPackages(ctx)
	} else {
		packages, err = h.store.Packages(ctx)
	}

	status := http.StatusOK
	var loadError string
	if err != nil {
		status = http.StatusBadGateway
		loadError = "We couldn't load the party packages. Please try again."
	}
	c.HTML(status, "landing.tmpl", gin.H{
		"Packages":  packages,
		"LoadError": loadError,
	})
}

func (h *PageHandler) bookForm(c *gin.Context) {
	ctx := c.Request.Context()

	packages, err := h.store.Packages(ctx)
	var loadError string
	if err != nil {
		loadError = "We couldn't load the party packages. Please try again."
	}

	input := form.Input{PackageID: c.Query("package")}
	if findPackage(packages, input.PackageID) == nil {
		input.PackageID = ""
	}

	h.renderBookForm(c, http.StatusOK, packages, input, nil, "", loadError)
}

func (h *PageHandler) submitBooking(c *gin.Context) {
	ctx := c.Request.Context()

	input := form.Input{
		CustomerName:    c.PostForm("customerName"),
		Email:           c.PostForm("email"),
		Phone:           c.PostForm("phone"),
		PartyDate:       c.PostForm("partyDate"),
		NumberOfGuests:  c.PostForm("numberOfGuests"),
		PackageID:       c.PostForm("packageId"),
		SpecialRequests: c.PostForm("specialRequests"),
	}

	packages, _ := h.store.Packages(ctx)
	var maxGuests int64
	if pkg := findPackage(packages, input.PackageID); pkg != nil {
		maxGuests = pkg.MaxGuests
	}

	errs := form.Validate(input, maxGuests)
	if len(errs) > 0 {
		h.renderBookForm(c, http.StatusUnprocessableEntity, packages, input, errs, "", "")
		return
	}

	created, err := h.store.CreateBooking(ctx, form.Normalize(input))
	if err != nil {
		h.renderBookForm(c, http.StatusBadGateway, packages, input, nil,
			"Failed to create booking. Please try again.", "")
		return
	}

	c.Redirect(http.StatusSeeOther, "/confirmation/"+created.ID)
}

func (h *PageHandler) renderBookForm(c *gin.Context, status int, packages []domain.Package, input form.Input, errs form.Errors, submitError, loadError string) {
	c.HTML(status, "book.tmpl", gin.H{
		"Packages":    packages,
		"Form":        input,
		"Errors":      errs,
		"Focus":       form.FirstInvalid(errs),
		"Selected":    findPackage(packages, input.PackageID),
		"SubmitError": submitError,
		"LoadError":   loadError,
	})
}

func (h *PageHandler) confirmation(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	booking, err := h.store.Booking(ctx, id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			c.HTML(http.StatusNotFound, "confirmation.tmpl", gin.H{"NotFound": true})
			return
		}
		c.HTML(http.StatusBadGateway, "confirmation.tmpl", gin.H{
			"LoadError": "We couldn't load your booking. Please try again.",
		})
		return
	}

	packages, _ := h.store.Packages(ctx)
	c.HTML(http.StatusOK, "confirmation.tmpl", gin.H{
		"Booking": booking,
		"Package": findPackage(packages, booking.PackageID),
	})
}

func (h *PageHandler) myBookings(c *gin.Context) {
	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))

	bookings, err := h.store.BookingsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, queries.ErrDisabled) {
			// No search submitted yet; render the empty prompt.
			c.HTML(http.StatusOK, "mybookings.tmpl", gin.H{"Email": ""})
			return
		}
		c.HTML(http.StatusBadGateway, "mybookings.tmpl", gin.H{
			"Email":     email,
			"LoadError": "We couldn't look up your bookings. Please try again.",
		})
		return
	}

	// Newest first, matching creation order from the service.
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt > bookings[j].CreatedAt })

	c.HTML(http.StatusOK, "mybookings.tmpl", gin.H{
		"Email":    email,
		"Bookings": bookings,
		"Searched": true,
	})
}

func findPackage(packages []domain.Package, id string) *domain.Package {
	if id == "" {
		return nil
	}
	for i := range packages {
		if packages[i].ID == id {
			return &packages[i]
		}
	}
	return nil
}
