package utils

import (
	"context"
	"testing"
	"time"
)

func TestRefundSplit(t *testing.T) {
	refund, fee := RefundSplit(1000)
	if refund != 80000 || fee != 20000 {
		t.Fatalf("RefundSplit(1000) = %d, %d", refund, fee)
	}
	if FromMinorUnits(refund) != 800 || FromMinorUnits(fee) != 200 {
		t.Fatalf("unexpected decimal amounts")
	}

	refund, fee = RefundSplit(333)
	if refund+fee != 33300 {
		t.Fatalf("split must conserve the amount, got %d+%d", refund, fee)
	}
	if refund, fee = RefundSplit(0); refund != 0 || fee != 0 {
		t.Fatalf("zero amount must refund nothing")
	}
}

func TestFormatRupees(t *testing.T) {
	cases := map[int64]string{0: "Rs. 0", 1300: "Rs. 1,300", 1234567: "Rs. 1,234,567", -700: "-Rs. 700"}
	for in, want := range cases {
		if got := FormatRupees(in); got != want {
			t.Fatalf("FormatRupees(%d) = %q want %q", in, got, want)
		}
	}
}

func TestValidPhone(t *testing.T) {
	if !ValidPhone("+91 (022) 555-0100") {
		t.Fatalf("expected phone to be valid")
	}
	if ValidPhone("call me") {
		t.Fatalf("expected letters to be rejected")
	}
}

func TestBeforeDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.Local)
	if BeforeDay(now.Add(-time.Hour), now) {
		t.Fatalf("same calendar day must not be before")
	}
	if !BeforeDay(now.AddDate(0, 0, -1), now) {
		t.Fatalf("yesterday must be before")
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if RequestIDFrom(ctx) != "abc" {
		t.Fatalf("request id lost")
	}
	if RequestIDFrom(context.Background()) != "" {
		t.Fatalf("expected empty request id")
	}
}
