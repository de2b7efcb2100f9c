package services

import (
	"context"
	"fmt"
	"time"

	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/utils"
)

// TrainDetails is a train plus the dates it does not run.
type TrainDetails struct {
	models.Train
	TotalSeats    int      `json:"total_seats"`
	InactiveDates []string `json:"inactive_dates"`
}

type TrainService struct {
	Trains TrainStore
}

func (s TrainService) GetTrain(ctx context.Context, id int64) (TrainDetails, error) {
	t, err := s.Trains.GetByID(ctx, id)
	if err != nil {
		return TrainDetails{}, err
	}
	dates, err := s.Trains.ListInactiveDates(ctx, id)
	if err != nil {
		return TrainDetails{}, domain.InternalError{Msg: "failed to load schedule", Err: err}
	}
	return TrainDetails{Train: t, TotalSeats: t.Seats.TotalSeats(), InactiveDates: dates}, nil
}

func (s TrainService) SetActive(ctx context.Context, id int64, active bool) (TrainDetails, error) {
	if _, err := s.Trains.GetByID(ctx, id); err != nil {
		return TrainDetails{}, err
	}
	if err := s.Trains.SetActive(ctx, id, active); err != nil {
		return TrainDetails{}, domain.InternalError{Msg: "failed to update train", Err: err}
	}
	utils.LogCtx(ctx, "train", "set_active", fmt.Sprintf("train_id=%d active=%t", id, active))
	return s.GetTrain(ctx, id)
}

func (s TrainService) SetOperationalStatus(ctx context.Context, id int64, status models.OperationalStatus) (TrainDetails, error) {
	if !status.Valid() {
		return TrainDetails{}, domain.ValidationError{Field: "operational_status", Msg: "must be OPERATIONAL, MAINTENANCE or SUSPENDED"}
	}
	if _, err := s.Trains.GetByID(ctx, id); err != nil {
		return TrainDetails{}, err
	}
	if err := s.Trains.SetOperationalStatus(ctx, id, status); err != nil {
		return TrainDetails{}, domain.InternalError{Msg: "failed to update train", Err: err}
	}
	utils.LogCtx(ctx, "train", "set_status", fmt.Sprintf("train_id=%d status=%s", id, status))
	return s.GetTrain(ctx, id)
}

func (s TrainService) AddInactiveDate(ctx context.Context, id int64, date time.Time) (TrainDetails, error) {
	if _, err := s.Trains.GetByID(ctx, id); err != nil {
		return TrainDetails{}, err
	}
	if err := s.Trains.AddInactiveDate(ctx, id, date); err != nil {
		return TrainDetails{}, domain.InternalError{Msg: "failed to add inactive date", Err: err}
	}
	return s.GetTrain(ctx, id)
}

func (s TrainService) RemoveInactiveDate(ctx context.Context, id int64, date time.Time) (TrainDetails, error) {
	if _, err := s.Trains.GetByID(ctx, id); err != nil {
		return TrainDetails{}, err
	}
	if err := s.Trains.RemoveInactiveDate(ctx, id, date); err != nil {
		return TrainDetails{}, domain.InternalError{Msg: "failed to remove inactive date", Err: err}
	}
	return s.GetTrain(ctx, id)
}
