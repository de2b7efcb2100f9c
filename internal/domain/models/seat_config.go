package models

import (
	"fmt"
	"math"
)

// Default prices applied by the reset operation.
const (
	DefaultSleeperPrice int64 = 300
	DefaultAC2Price     int64 = 700
	DefaultAC1Price     int64 = 1300
)

// ClassAllocation is the seat count and per-seat price of one class.
type ClassAllocation struct {
	Seats int   `json:"seats"`
	Price int64 `json:"price"`
}

// SeatConfig partitions seat numbers 1..TotalSeats() into contiguous class
// ranges in the fixed order SLEEPER, AC2, AC1. Ranges are never stored.
type SeatConfig struct {
	Sleeper ClassAllocation `json:"sleeper"`
	AC2     ClassAllocation `json:"ac2"`
	AC1     ClassAllocation `json:"ac1"`
}

// SeatRange is the derived seat-number interval of a class. An empty class
// has End == Start-1.
type SeatRange struct {
	Class SeatClass `json:"class"`
	Start int       `json:"start"`
	End   int       `json:"end"`
	Seats int       `json:"seats"`
	Price int64     `json:"price"`
}

func (r SeatRange) Empty() bool { return r.Seats == 0 }

func (r SeatRange) Contains(seat int) bool {
	return seat >= r.Start && seat <= r.End
}

// For returns the allocation of class c; the zero allocation for unknown classes.
func (cfg SeatConfig) For(c SeatClass) ClassAllocation {
	switch c {
	case Sleeper:
		return cfg.Sleeper
	case AC2:
		return cfg.AC2
	case AC1:
		return cfg.AC1
	}
	return ClassAllocation{}
}

// With returns a copy of cfg with class c replaced.
func (cfg SeatConfig) With(c SeatClass, a ClassAllocation) SeatConfig {
	switch c {
	case Sleeper:
		cfg.Sleeper = a
	case AC2:
		cfg.AC2 = a
	case AC1:
		cfg.AC1 = a
	}
	return cfg
}

func (cfg SeatConfig) SeatsFor(c SeatClass) int   { return cfg.For(c).Seats }
func (cfg SeatConfig) PriceFor(c SeatClass) int64 { return cfg.For(c).Price }

func (cfg SeatConfig) TotalSeats() int {
	return cfg.Sleeper.Seats + cfg.AC2.Seats + cfg.AC1.Seats
}

func (cfg SeatConfig) Range(c SeatClass) SeatRange {
	offset := 0
	for _, cls := range SeatClasses {
		a := cfg.For(cls)
		if cls == c {
			return SeatRange{Class: c, Start: offset + 1, End: offset + a.Seats, Seats: a.Seats, Price: a.Price}
		}
		offset += a.Seats
	}
	return SeatRange{Class: c, Start: 1, End: 0}
}

func (cfg SeatConfig) RangeStart(c SeatClass) int { return cfg.Range(c).Start }
func (cfg SeatConfig) RangeEnd(c SeatClass) int   { return cfg.Range(c).End }

func (cfg SeatConfig) Ranges() []SeatRange {
	out := make([]SeatRange, 0, len(SeatClasses))
	for _, c := range SeatClasses {
		out = append(out, cfg.Range(c))
	}
	return out
}

func (cfg SeatConfig) IsValidSeatForClass(seat int, c SeatClass) bool {
	if !c.Valid() || seat < 1 {
		return false
	}
	return cfg.Range(c).Contains(seat)
}

// ClassOfSeat maps a seat number back to its class.
func (cfg SeatConfig) ClassOfSeat(seat int) (SeatClass, bool) {
	for _, c := range SeatClasses {
		if cfg.IsValidSeatForClass(seat, c) {
			return c, true
		}
	}
	return 0, false
}

func (cfg SeatConfig) Validate() error {
	for _, c := range SeatClasses {
		a := cfg.For(c)
		if a.Seats < 0 {
			return fmt.Errorf("%s seats must not be negative", c)
		}
		if a.Price < 0 {
			return fmt.Errorf("%s price must not be negative", c)
		}
		if a.Seats > 0 && a.Price == 0 {
			return fmt.Errorf("%s price is required when the class has seats", c)
		}
	}
	if cfg.TotalSeats() == 0 {
		return fmt.Errorf("train must have at least one seat")
	}
	return nil
}

// SplitByRatio divides total seats by percentage ratios. AC1 takes the
// remainder so the counts always sum to total.
func SplitByRatio(total, sleeperPct, ac2Pct int) (sleeper, ac2, ac1 int) {
	if total <= 0 {
		return 0, 0, 0
	}
	sleeper = int(math.Round(float64(total) * float64(sleeperPct) / 100))
	ac2 = int(math.Round(float64(total) * float64(ac2Pct) / 100))
	if sleeper > total {
		sleeper = total
	}
	if sleeper+ac2 > total {
		ac2 = total - sleeper
	}
	ac1 = total - sleeper - ac2
	return sleeper, ac2, ac1
}

// DefaultSeatConfig applies the 50/20/30 split with default prices.
func DefaultSeatConfig(total int) SeatConfig {
	s, a2, a1 := SplitByRatio(total, 50, 20)
	return SeatConfig{
		Sleeper: ClassAllocation{Seats: s, Price: DefaultSleeperPrice},
		AC2:     ClassAllocation{Seats: a2, Price: DefaultAC2Price},
		AC1:     ClassAllocation{Seats: a1, Price: DefaultAC1Price},
	}
}
