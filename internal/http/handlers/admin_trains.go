package handlers

import (
	"net/http"

	"railbook/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type seatConfigBody struct {
	SleeperSeats int   `json:"sleeper_seats"`
	AC2Seats     int   `json:"ac2_seats"`
	AC1Seats     int   `json:"ac1_seats"`
	SleeperPrice int64 `json:"sleeper_price"`
	AC2Price     int64 `json:"ac2_price"`
	AC1Price     int64 `json:"ac1_price"`
}

func (b seatConfigBody) config() models.SeatConfig {
	return models.SeatConfig{
		Sleeper: models.ClassAllocation{Seats: b.SleeperSeats, Price: b.SleeperPrice},
		AC2:     models.ClassAllocation{Seats: b.AC2Seats, Price: b.AC2Price},
		AC1:     models.ClassAllocation{Seats: b.AC1Seats, Price: b.AC1Price},
	}
}

// GET /api/admin/trains/:id/seat-config
func (h Handler) GetSeatConfig(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	out, err := h.Configs.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PUT /api/admin/trains/:id/seat-config
func (h Handler) UpdateSeatConfig(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body seatConfigBody
	if !BindJSONOrError(c, &body) {
		return
	}
	out, err := h.Configs.Configure(c.Request.Context(), id, body.config())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PUT /api/admin/trains/:id/pricing
func (h Handler) UpdatePricing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body models.PricingUpdate
	if !BindJSONOrError(c, &body) {
		return
	}
	out, err := h.Configs.UpdatePricing(c.Request.Context(), id, body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PUT /api/admin/trains/:id/reset-seats
func (h Handler) ResetSeats(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		TotalSeats int `json:"total_seats" binding:"gt=0"`
	}
	if !BindJSONOrError(c, &body) {
		return
	}
	out, err := h.Configs.ResetToDefault(c.Request.Context(), id, body.TotalSeats)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/admin/trains/bulk-configure
func (h Handler) BulkConfigure(c *gin.Context) {
	var body models.BulkConfigRequest
	if !BindJSONOrError(c, &body) {
		return
	}
	n, err := h.Configs.BulkConfigure(c.Request.Context(), body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"configured_trains": n})
}

// GET /api/admin/trains/seat-overview
func (h Handler) SeatOverview(c *gin.Context) {
	out, err := h.Configs.Overview(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "trains": out})
}

// PUT /api/admin/trains/:id/active
func (h Handler) SetTrainActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if !BindJSONOrError(c, &body) {
		return
	}
	out, err := h.Trains.SetActive(c.Request.Context(), id, *body.Active)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PUT /api/admin/trains/:id/status
func (h Handler) SetTrainStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Status models.OperationalStatus `json:"operational_status" binding:"required"`
	}
	if !BindJSONOrError(c, &body) {
		return
	}
	out, err := h.Trains.SetOperationalStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type inactiveDateBody struct {
	Date string `json:"date" binding:"required"`
}

// POST /api/admin/trains/:id/inactive-dates
func (h Handler) AddInactiveDate(c *gin.Context) {
	h.changeInactiveDate(c, true)
}

// DELETE /api/admin/trains/:id/inactive-dates
func (h Handler) RemoveInactiveDate(c *gin.Context) {
	h.changeInactiveDate(c, false)
}

func (h Handler) changeInactiveDate(c *gin.Context, add bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body inactiveDateBody
	if !BindJSONOrError(c, &body) {
		return
	}
	date, err := parseDate(body.Date, "date")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if add {
		out, err := h.Trains.AddInactiveDate(c.Request.Context(), id, date)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
		return
	}
	out, err := h.Trains.RemoveInactiveDate(c.Request.Context(), id, date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
