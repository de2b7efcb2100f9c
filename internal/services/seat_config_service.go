package services

import (
	"context"
	"fmt"
	"time"

	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/utils"
)

// SeatConfigService administers per-train class layouts and prices.
type SeatConfigService struct {
	Trains TrainStore
	Now    func() time.Time
}

func (s SeatConfigService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s SeatConfigService) Get(ctx context.Context, trainID int64) (models.SeatConfigView, error) {
	t, err := s.Trains.GetByID(ctx, trainID)
	if err != nil {
		return models.SeatConfigView{}, err
	}
	return models.NewSeatConfigView(t), nil
}

// Configure replaces counts and prices. It refuses layouts that would put an
// upcoming confirmed booking outside its class range.
func (s SeatConfigService) Configure(ctx context.Context, trainID int64, cfg models.SeatConfig) (models.SeatConfigView, error) {
	if err := cfg.Validate(); err != nil {
		return models.SeatConfigView{}, domain.ValidationError{Field: "seats", Msg: err.Error()}
	}
	t, err := s.Trains.GetByID(ctx, trainID)
	if err != nil {
		return models.SeatConfigView{}, err
	}
	n, err := s.Trains.ReconfigureSeats(ctx, trainID, cfg, utils.DateOnly(s.now()))
	if err != nil {
		if domain.CodeOf(err) != "" {
			return models.SeatConfigView{}, err
		}
		return models.SeatConfigView{}, domain.InternalError{Msg: "failed to save seat configuration", Err: err}
	}
	if n > 0 {
		return models.SeatConfigView{}, strandedError(n)
	}
	t.Seats = cfg
	t.Configured = true
	utils.LogCtx(ctx, "seat_config", "configure", fmt.Sprintf("train_id=%d sleeper=%d ac2=%d ac1=%d total=%d",
		trainID, cfg.Sleeper.Seats, cfg.AC2.Seats, cfg.AC1.Seats, cfg.TotalSeats()))
	return models.NewSeatConfigView(t), nil
}

// UpdatePricing changes prices only; prices apply to bookings made afterwards.
func (s SeatConfigService) UpdatePricing(ctx context.Context, trainID int64, p models.PricingUpdate) (models.SeatConfigView, error) {
	if p.SleeperPrice <= 0 || p.AC2Price <= 0 || p.AC1Price <= 0 {
		return models.SeatConfigView{}, domain.ValidationError{Field: "price", Msg: "all prices must be positive"}
	}
	t, err := s.Trains.GetByID(ctx, trainID)
	if err != nil {
		return models.SeatConfigView{}, err
	}
	cfg := t.Seats
	cfg.Sleeper.Price = p.SleeperPrice
	cfg.AC2.Price = p.AC2Price
	cfg.AC1.Price = p.AC1Price
	if err := s.Trains.UpdateSeatConfig(ctx, trainID, cfg); err != nil {
		return models.SeatConfigView{}, domain.InternalError{Msg: "failed to save pricing", Err: err}
	}
	t.Seats = cfg
	t.Configured = true
	utils.LogCtx(ctx, "seat_config", "pricing", fmt.Sprintf("train_id=%d", trainID))
	return models.NewSeatConfigView(t), nil
}

// ResetToDefault applies the 50/20/30 split and default prices.
func (s SeatConfigService) ResetToDefault(ctx context.Context, trainID int64, totalSeats int) (models.SeatConfigView, error) {
	if totalSeats <= 0 {
		return models.SeatConfigView{}, domain.ValidationError{Field: "total_seats", Msg: "must be positive"}
	}
	return s.Configure(ctx, trainID, models.DefaultSeatConfig(totalSeats))
}

// BulkConfigure splits totalSeats by ratio on every unconfigured train and
// returns how many trains were configured.
func (s SeatConfigService) BulkConfigure(ctx context.Context, req models.BulkConfigRequest) (int, error) {
	if req.TotalSeats <= 0 {
		return 0, domain.ValidationError{Field: "total_seats", Msg: "must be positive"}
	}
	if req.SleeperRatio < 0 || req.AC2Ratio < 0 || req.AC1Ratio < 0 {
		return 0, domain.ValidationError{Field: "ratio", Msg: "ratios must not be negative"}
	}
	if req.SleeperRatio+req.AC2Ratio+req.AC1Ratio != 100 {
		return 0, domain.ValidationError{Field: "ratio", Msg: "ratios must sum to 100"}
	}

	trains, err := s.Trains.ListUnconfigured(ctx)
	if err != nil {
		return 0, domain.InternalError{Msg: "failed to list trains", Err: err}
	}
	sl, a2, a1 := models.SplitByRatio(req.TotalSeats, req.SleeperRatio, req.AC2Ratio)

	today := utils.DateOnly(s.now())
	configured := 0
	for _, t := range trains {
		cfg := models.SeatConfig{
			Sleeper: models.ClassAllocation{Seats: sl, Price: priceOr(t.Seats.Sleeper.Price, models.DefaultSleeperPrice)},
			AC2:     models.ClassAllocation{Seats: a2, Price: priceOr(t.Seats.AC2.Price, models.DefaultAC2Price)},
			AC1:     models.ClassAllocation{Seats: a1, Price: priceOr(t.Seats.AC1.Price, models.DefaultAC1Price)},
		}
		n, err := s.Trains.ReconfigureSeats(ctx, t.ID, cfg, today)
		if err != nil {
			return configured, domain.InternalError{Msg: fmt.Sprintf("failed to configure train %d", t.ID), Err: err}
		}
		if n > 0 {
			utils.LogCtx(ctx, "seat_config", "bulk_skip", fmt.Sprintf("train_id=%d stranded=%d", t.ID, n))
			continue
		}
		configured++
	}
	utils.LogCtx(ctx, "seat_config", "bulk_configure", fmt.Sprintf("configured=%d total_seats=%d", configured, req.TotalSeats))
	return configured, nil
}

func (s SeatConfigService) Overview(ctx context.Context) ([]models.TrainSeatOverview, error) {
	trains, err := s.Trains.List(ctx)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list trains", Err: err}
	}
	out := make([]models.TrainSeatOverview, 0, len(trains))
	for _, t := range trains {
		out = append(out, models.NewTrainSeatOverview(t))
	}
	return out, nil
}

func strandedError(n int) error {
	return domain.ConflictError{
		Resource: "seat configuration",
		Msg:      fmt.Sprintf("%d confirmed booking(s) would fall outside their class range", n),
		Code:     domain.CodeStrandedBookings,
	}
}

func priceOr(p, fallback int64) int64 {
	if p > 0 {
		return p
	}
	return fallback
}
