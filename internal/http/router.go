package api

import (
	"log"
	stdhttp "net/http"

	intconfig "railbook/internal/config"
	h "railbook/internal/http/handlers"
	"railbook/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, hd h.Handler) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(env.AllowedOrigins),
		middleware.Auth([]byte(env.JWTSecret)),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	limiter := middleware.NewIPRateLimiter(env.RateLimitRPS, env.RateLimitBurst)
	limit := middleware.RateLimit(limiter)

	api := r.Group("/api")
	{
		api.GET("/health", hd.Health)
		api.GET("/db-check", hd.DBCheck)

		authed := api.Group("", middleware.RequireRoles("user", "admin"))

		// Seats
		seats := authed.Group("/seats")
		seats.POST("/book", limit, hd.BookSeats)
		seats.POST("/book-specific", limit, hd.BookSpecificSeat)
		seats.GET("/availability/:trainId", hd.Availability)
		seats.GET("/check", hd.CheckSeat)
		seats.GET("/validate", hd.ValidateSeat)
		seats.GET("/next-available", hd.NextAvailableSeat)
		seats.GET("/booked", hd.BookedSeats)
		seats.GET("/bookings", hd.PassengerBookings)
		seats.GET("/bookings/:id", hd.GetSeatBooking)
		seats.PUT("/bookings/:id/release", hd.ReleaseSeatBooking)

		// Tickets
		tickets := authed.Group("/tickets")
		tickets.POST("/book/:trainId", limit, hd.BookTicket)
		tickets.GET("", hd.ListTickets)
		tickets.GET("/order/:orderId", hd.GetTicketByOrder)
		tickets.GET("/:id", hd.GetTicket)
		tickets.PUT("/:id/cancel", hd.CancelTicket)
		tickets.PUT("/:id/cancel-refund", hd.CancelTicketWithRefund)
		tickets.GET("/:id/e-ticket", hd.ETicketPDF)
		tickets.GET("/:id/invoice", hd.InvoicePDF)

		authed.GET("/trains/:id", hd.GetTrain)

		// Admin
		admin := api.Group("/admin", middleware.RequireRoles("admin"))
		trains := admin.Group("/trains")
		trains.GET("/seat-overview", hd.SeatOverview)
		trains.POST("/bulk-configure", hd.BulkConfigure)
		trains.GET("/:id/seat-config", hd.GetSeatConfig)
		trains.PUT("/:id/seat-config", hd.UpdateSeatConfig)
		trains.PUT("/:id/pricing", hd.UpdatePricing)
		trains.PUT("/:id/reset-seats", hd.ResetSeats)
		trains.PUT("/:id/active", hd.SetTrainActive)
		trains.PUT("/:id/status", hd.SetTrainStatus)
		trains.POST("/:id/inactive-dates", hd.AddInactiveDate)
		trains.DELETE("/:id/inactive-dates", hd.RemoveInactiveDate)
	}

	return r
}
