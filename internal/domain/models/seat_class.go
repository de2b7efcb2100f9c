package models

import (
	"fmt"
	"strings"
)

// SeatClass is the closed set of priced partitions of a train's seat space.
// The zero value is not a valid class.
type SeatClass int

const (
	Sleeper SeatClass = iota + 1
	AC2
	AC1
)

// SeatClasses lists every class in range order.
var SeatClasses = [...]SeatClass{Sleeper, AC2, AC1}

func (c SeatClass) String() string {
	switch c {
	case Sleeper:
		return "SLEEPER"
	case AC2:
		return "AC2"
	case AC1:
		return "AC1"
	default:
		return fmt.Sprintf("SeatClass(%d)", int(c))
	}
}

func (c SeatClass) Valid() bool {
	return c >= Sleeper && c <= AC1
}

// ParseSeatClass accepts the class name in any letter case.
func ParseSeatClass(s string) (SeatClass, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SLEEPER":
		return Sleeper, nil
	case "AC2", "2AC":
		return AC2, nil
	case "AC1", "1AC":
		return AC1, nil
	}
	return 0, fmt.Errorf("unknown seat class %q", s)
}

// MarshalText writes the class name. The zero value means unset and
// encodes as an empty string.
func (c SeatClass) MarshalText() ([]byte, error) {
	if c == 0 {
		return []byte{}, nil
	}
	if !c.Valid() {
		return nil, fmt.Errorf("invalid seat class %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *SeatClass) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = 0
		return nil
	}
	v, err := ParseSeatClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
