package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/utils"

	"github.com/google/uuid"
)

const (
	expectedRefundTime = "5-7 business days"
	refundFailedHint   = "Please contact support"
	notApplicable      = "N/A"

	defaultPaymentTimeout = 5 * time.Second
	defaultNotifyTimeout  = 5 * time.Second
)

// SeatAllocator reserves seats for a ticket.
type SeatAllocator interface {
	BookSeats(ctx context.Context, req models.SeatBookingRequest) (models.BookingResult, error)
}

// SeatReleaser gives seats back to the ledger.
type SeatReleaser interface {
	Release(ctx context.Context, bookingID int64) error
}

// TicketService owns the WAITING -> CONFIRMED -> CANCELLED lifecycle.
type TicketService struct {
	Tickets        TicketStore
	Trains         TrainStore
	Allocator      SeatAllocator
	Seats          SeatReleaser
	Payments       PaymentGateway
	Notifier       Publisher
	PaymentTimeout time.Duration
	NotifyTimeout  time.Duration
	NewTicketNo    func() string
	Now            func() time.Time
}

// NewTicketNumber returns "TCKT-" followed by eight upper-case hex digits.
func NewTicketNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TCKT-" + strings.ToUpper(id[:8])
}

func (s TicketService) ticketNumber() string {
	if s.NewTicketNo != nil {
		return s.NewTicketNo()
	}
	return NewTicketNumber()
}

func (s TicketService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s TicketService) paymentTimeout() time.Duration {
	if s.PaymentTimeout > 0 {
		return s.PaymentTimeout
	}
	return defaultPaymentTimeout
}

func (s TicketService) notifyTimeout() time.Duration {
	if s.NotifyTimeout > 0 {
		return s.NotifyTimeout
	}
	return defaultNotifyTimeout
}

// BookTicket verifies payment, reserves seats and persists a CONFIRMED ticket.
func (s TicketService) BookTicket(ctx context.Context, trainID int64, req models.TicketRequest) (models.Ticket, error) {
	if err := validateTicketRequest(trainID, req); err != nil {
		return models.Ticket{}, err
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.PaymentID = strings.TrimSpace(req.PaymentID)

	if err := s.verifyPayment(ctx, req); err != nil {
		return models.Ticket{}, err
	}

	exists, err := s.Tickets.ExistsByOrderID(ctx, req.OrderID)
	if err != nil {
		return models.Ticket{}, domain.InternalError{Msg: "failed to check order", Err: err}
	}
	if exists {
		return models.Ticket{}, duplicateBooking(req.OrderID)
	}

	train, err := s.Trains.GetByID(ctx, trainID)
	if err != nil {
		return models.Ticket{}, err
	}
	if err := checkPaidAmount(train, req); err != nil {
		return models.Ticket{}, err
	}

	alloc, err := s.Allocator.BookSeats(ctx, models.SeatBookingRequest{
		TrainID:       trainID,
		SeatClass:     req.SeatClass,
		BookingDate:   req.BookingDate,
		NumberOfSeats: req.SeatCount,
		PreferredSeat: req.PreferredSeat,
		Passenger:     models.Passenger{Name: req.FullName, Email: req.Email, Phone: req.Phone},
	})
	if err != nil {
		return models.Ticket{}, err
	}

	t := models.Ticket{
		TicketNumber:  s.ticketNumber(),
		OrderID:       req.OrderID,
		PaymentID:     req.PaymentID,
		UserEmail:     utils.NormalizeEmail(req.UserEmail),
		TrainID:       train.ID,
		TrainName:     train.Name,
		Source:        train.Source,
		Destination:   train.Destination,
		DepartureTime: train.DepartureTime,
		FullName:      alloc.Passenger.Name,
		Age:           req.Age,
		Email:         alloc.Passenger.Email,
		Phone:         alloc.Passenger.Phone,
		BookingDate:   alloc.BookingDate,
		SeatClass:     alloc.SeatClass,
		SeatNumbers:   alloc.SeatNumbers,
		PNR:           alloc.PNR,
		PricePerSeat:  alloc.PricePerSeat,
		Amount:        alloc.TotalAmount,
		TotalAmount:   alloc.TotalAmount,
		Status:        models.TicketConfirmed,
	}
	id, err := s.Tickets.Create(ctx, t, alloc.BookingIDs)
	if err != nil {
		s.releaseBookings(ctx, alloc.BookingIDs)
		if domain.IsConflict(err) || domain.IsValidation(err) {
			return models.Ticket{}, err
		}
		return models.Ticket{}, domain.InternalError{Msg: "failed to save ticket", Err: err}
	}
	t.ID = id
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt

	utils.LogCtx(ctx, "ticket", "book", fmt.Sprintf("ticket_id=%d ticket_number=%s order_id=%s seats=%v",
		t.ID, t.TicketNumber, t.OrderID, t.SeatNumbers))

	go s.publishBooked(utils.RequestIDFrom(ctx), t)
	return t, nil
}

// verifyPayment is fail-closed: errors and timeouts count as unverified.
func (s TicketService) verifyPayment(ctx context.Context, req models.TicketRequest) error {
	vctx, cancel := context.WithTimeout(ctx, s.paymentTimeout())
	defer cancel()

	ok, err := s.Payments.VerifyPayment(vctx, req.OrderID, req.PaymentID, req.Signature)
	if err != nil || !ok {
		msg := "payment verification failed"
		if err != nil {
			utils.LogCtx(ctx, "ticket", "verify_payment_error", fmt.Sprintf("order_id=%s err=%v", req.OrderID, err))
		}
		return domain.UpstreamError{Service: "payment", Msg: msg, Code: domain.CodePaymentVerificationFailed, Err: err}
	}
	return nil
}

func (s TicketService) releaseBookings(ctx context.Context, ids []int64) {
	bg := context.WithoutCancel(ctx)
	for _, id := range ids {
		if err := s.Seats.Release(bg, id); err != nil {
			utils.LogCtx(ctx, "ticket", "release_failed", fmt.Sprintf("booking_id=%d err=%v", id, err))
		}
	}
}

func (s TicketService) publishBooked(requestID string, t models.Ticket) {
	if s.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(utils.WithRequestID(context.Background(), requestID), s.notifyTimeout())
	defer cancel()

	evt := models.TicketBookedEvent{
		Email:         t.Email,
		TicketNumber:  t.TicketNumber,
		TrainName:     t.TrainName,
		Source:        t.Source,
		Destination:   t.Destination,
		DepartureTime: t.DepartureTime,
		FullName:      t.FullName,
		Age:           t.Age,
		NoOfSeats:     t.NoOfSeats(),
		OrderID:       t.OrderID,
		SeatClass:     t.SeatClass,
		SeatNumbers:   t.SeatNumbers,
		PNR:           t.PNR,
		BookingDate:   utils.FormatDate(t.BookingDate),
	}
	if err := s.Notifier.PublishTicketBooked(ctx, evt); err != nil {
		utils.LogEvent(requestID, "ticket", "notify_failed", fmt.Sprintf("ticket_number=%s err=%v", t.TicketNumber, err))
		return
	}
	utils.LogEvent(requestID, "ticket", "notify", "ticket_number="+t.TicketNumber)
}

func (s TicketService) GetTicket(ctx context.Context, id int64) (models.Ticket, error) {
	if id <= 0 {
		return models.Ticket{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	return s.Tickets.GetByID(ctx, id)
}

func (s TicketService) GetByOrderID(ctx context.Context, orderID string) (models.Ticket, error) {
	if strings.TrimSpace(orderID) == "" {
		return models.Ticket{}, domain.ValidationError{Field: "order_id", Msg: "is required"}
	}
	return s.Tickets.GetByOrderID(ctx, orderID)
}

func (s TicketService) ListByEmail(ctx context.Context, email string) ([]models.Ticket, error) {
	if utils.NormalizeEmail(email) == "" {
		return nil, domain.ValidationError{Field: "email", Msg: "is required"}
	}
	out, err := s.Tickets.ListByEmail(ctx, email)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list tickets", Err: err}
	}
	return out, nil
}

// CancelTicket cancels without contacting the payment collaborator.
func (s TicketService) CancelTicket(ctx context.Context, id int64) (models.CancellationResult, error) {
	return s.cancel(ctx, id, false)
}

// CancelTicketWithRefund cancels and refunds 80% of the paid amount.
func (s TicketService) CancelTicketWithRefund(ctx context.Context, id int64) (models.CancellationResult, error) {
	return s.cancel(ctx, id, true)
}

func (s TicketService) cancel(ctx context.Context, id int64, withRefund bool) (models.CancellationResult, error) {
	t, err := s.GetTicket(ctx, id)
	if err != nil {
		return models.CancellationResult{}, err
	}

	switch t.Status {
	case models.TicketCancelled:
		return alreadyCancelled(t), nil
	case models.TicketWaiting:
		return models.CancellationResult{
			TicketID:           t.ID,
			TicketNumber:       t.TicketNumber,
			Status:             t.Status,
			Message:            "Ticket is pending confirmation, please confirm it before cancelling",
			OriginalAmount:     float64(t.Amount),
			RefundStatus:       models.RefundNotApplicable,
			ExpectedRefundTime: notApplicable,
		}, nil
	}

	released, changed, err := s.Tickets.Cancel(ctx, t.ID)
	if err != nil {
		return models.CancellationResult{}, domain.InternalError{Msg: "failed to cancel ticket", Err: err}
	}
	if !changed {
		// Lost to a concurrent cancellation; report its outcome.
		latest, err := s.Tickets.GetByID(ctx, t.ID)
		if err != nil {
			return models.CancellationResult{}, err
		}
		return alreadyCancelled(latest), nil
	}

	res := models.CancellationResult{
		TicketID:           t.ID,
		TicketNumber:       t.TicketNumber,
		Status:             models.TicketCancelled,
		Message:            "Ticket cancelled",
		OriginalAmount:     float64(t.Amount),
		RefundStatus:       models.RefundNotApplicable,
		ExpectedRefundTime: notApplicable,
		SeatsReleased:      released,
		CancelledAt:        s.now(),
	}
	if withRefund && t.PaymentID != "" {
		s.refund(ctx, t, &res)
	}
	utils.LogCtx(ctx, "ticket", "cancel", fmt.Sprintf("ticket_id=%d released=%d refund_status=%s",
		t.ID, released, res.RefundStatus))
	return res, nil
}

// refund records its outcome on res and the ticket; it never fails the cancellation.
func (s TicketService) refund(ctx context.Context, t models.Ticket, res *models.CancellationResult) {
	refundMinor, feeMinor := utils.RefundSplit(t.Amount)
	res.RefundAmount = utils.FromMinorUnits(refundMinor)
	res.CancellationFee = utils.FromMinorUnits(feeMinor)

	rctx, cancel := context.WithTimeout(ctx, s.paymentTimeout())
	refundID, err := s.Payments.Refund(rctx, t.PaymentID, refundMinor)
	cancel()
	if err != nil {
		utils.LogCtx(ctx, "ticket", "refund_failed", fmt.Sprintf("ticket_id=%d err=%v", t.ID, err))
		res.RefundStatus = models.RefundFailed
		res.ExpectedRefundTime = refundFailedHint
		res.Message = "Ticket cancelled, refund failed"
	} else {
		res.RefundStatus = models.RefundInitiated
		res.RefundID = refundID
		res.ExpectedRefundTime = expectedRefundTime
		res.Message = "Ticket cancelled, refund initiated"
	}
	if err := s.Tickets.UpdateRefund(context.WithoutCancel(ctx), t.ID, res.RefundID, res.RefundStatus); err != nil {
		utils.LogCtx(ctx, "ticket", "refund_record_failed", fmt.Sprintf("ticket_id=%d err=%v", t.ID, err))
	}
}

func alreadyCancelled(t models.Ticket) models.CancellationResult {
	status := t.RefundStatus
	if status == "" {
		status = models.RefundNotApplicable
	}
	return models.CancellationResult{
		TicketID:           t.ID,
		TicketNumber:       t.TicketNumber,
		Status:             models.TicketCancelled,
		Message:            "Ticket is already cancelled",
		OriginalAmount:     float64(t.Amount),
		RefundStatus:       status,
		RefundID:           t.RefundID,
		ExpectedRefundTime: notApplicable,
		CancelledAt:        t.UpdatedAt,
	}
}

func duplicateBooking(orderID string) error {
	return domain.ConflictError{
		Resource: "ticket",
		Msg:      fmt.Sprintf("a ticket already exists for order %s", orderID),
		Code:     domain.CodeDuplicateBooking,
	}
}

// checkPaidAmount rejects a client-reported amount that differs from the
// fare. Zero means not reported.
func checkPaidAmount(train models.Train, req models.TicketRequest) error {
	if req.Amount == 0 || !req.SeatClass.Valid() {
		return nil
	}
	fare := train.Seats.PriceFor(req.SeatClass) * int64(req.SeatCount)
	if req.Amount != fare {
		return domain.ValidationError{
			Field: "amount",
			Msg:   fmt.Sprintf("%d does not match the fare of %d for %d %s seat(s)", req.Amount, fare, req.SeatCount, req.SeatClass),
		}
	}
	return nil
}

func validateTicketRequest(trainID int64, req models.TicketRequest) error {
	switch {
	case trainID <= 0:
		return domain.ValidationError{Field: "train_id", Msg: "is required"}
	case strings.TrimSpace(req.OrderID) == "":
		return domain.ValidationError{Field: "order_id", Msg: "is required"}
	case strings.TrimSpace(req.PaymentID) == "":
		return domain.ValidationError{Field: "payment_id", Msg: "is required"}
	case req.SeatCount < 1:
		return domain.ValidationError{Field: "seat_count", Msg: "must be at least 1"}
	case req.Age < 0 || req.Age > 150:
		return domain.ValidationError{Field: "age", Msg: "is out of range"}
	case req.Amount < 0:
		return domain.ValidationError{Field: "amount", Msg: "must not be negative"}
	}
	return nil
}
