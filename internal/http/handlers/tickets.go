package handlers

import (
	"net/http"

	"railbook/internal/domain/models"
	"railbook/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type ticketBody struct {
	FullName      string           `json:"full_name"`
	Age           int              `json:"age"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone"`
	SeatClass     models.SeatClass `json:"seat_class"`
	SeatCount     int              `json:"seat_count"`
	PreferredSeat int              `json:"preferred_seat_number"`
	BookingDate   string           `json:"booking_date"`
	OrderID       string           `json:"order_id"`
	PaymentID     string           `json:"payment_id"`
	Signature     string           `json:"signature"`
	Amount        int64            `json:"amount"`
}

// POST /api/tickets/book/:trainId
func (h Handler) BookTicket(c *gin.Context) {
	trainID, ok := parseIDParam(c, "trainId")
	if !ok {
		return
	}
	var body ticketBody
	if !BindJSONOrError(c, &body) {
		return
	}
	date, err := parseDate(body.BookingDate, "booking_date")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	seats := body.SeatCount
	if seats == 0 {
		seats = 1
	}
	t, err := h.Tickets.BookTicket(c.Request.Context(), trainID, models.TicketRequest{
		UserEmail:     middleware.CallerFrom(c).Email,
		FullName:      body.FullName,
		Age:           body.Age,
		Email:         body.Email,
		Phone:         body.Phone,
		SeatClass:     body.SeatClass,
		SeatCount:     seats,
		PreferredSeat: body.PreferredSeat,
		BookingDate:   date,
		OrderID:       body.OrderID,
		PaymentID:     body.PaymentID,
		Signature:     body.Signature,
		Amount:        body.Amount,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// loadOwnTicket fetches a ticket the caller may see.
func (h Handler) loadOwnTicket(c *gin.Context) (models.Ticket, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return models.Ticket{}, false
	}
	t, err := h.Tickets.GetTicket(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return models.Ticket{}, false
	}
	if !ensureSelfOrAdmin(c, t.Email, t.UserEmail) {
		return models.Ticket{}, false
	}
	return t, true
}

// GET /api/tickets/:id
func (h Handler) GetTicket(c *gin.Context) {
	t, ok := h.loadOwnTicket(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t)
}

// GET /api/tickets/order/:orderId
func (h Handler) GetTicketByOrder(c *gin.Context) {
	t, err := h.Tickets.GetByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !ensureSelfOrAdmin(c, t.Email, t.UserEmail) {
		return
	}
	c.JSON(http.StatusOK, t)
}

// GET /api/tickets?email=
func (h Handler) ListTickets(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		email = middleware.CallerFrom(c).Email
	}
	if !ensureSelfOrAdmin(c, email) {
		return
	}
	out, err := h.Tickets.ListByEmail(c.Request.Context(), email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if out == nil {
		out = []models.Ticket{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "tickets": out})
}

// PUT /api/tickets/:id/cancel
func (h Handler) CancelTicket(c *gin.Context) {
	t, ok := h.loadOwnTicket(c)
	if !ok {
		return
	}
	res, err := h.Tickets.CancelTicket(c.Request.Context(), t.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PUT /api/tickets/:id/cancel-refund
func (h Handler) CancelTicketWithRefund(c *gin.Context) {
	t, ok := h.loadOwnTicket(c)
	if !ok {
		return
	}
	res, err := h.Tickets.CancelTicketWithRefund(c.Request.Context(), t.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/tickets/:id/e-ticket
func (h Handler) ETicketPDF(c *gin.Context) {
	t, ok := h.loadOwnTicket(c)
	if !ok {
		return
	}
	pdf, filename, err := h.Docs.GenerateETicket(c.Request.Context(), t.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GET /api/tickets/:id/invoice
func (h Handler) InvoicePDF(c *gin.Context) {
	t, ok := h.loadOwnTicket(c)
	if !ok {
		return
	}
	pdf, filename, err := h.Docs.GenerateInvoice(c.Request.Context(), t.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
