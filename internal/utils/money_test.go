package utils

import "testing"

func TestComputeCommission(t *testing.T) {
	cases := []struct {
		amount, rate    float64
		commission, net float64
	}{
		{15000, 2.5, 375, 14625},
		{15000, 0, 0, 15000},
		{10000, 10, 1000, 9000},
		{333, 3, 9.99, 323.01},
		{1, 0.1, 0, 1},
	}
	for _, c := range cases {
		commission, net := ComputeCommission(c.amount, c.rate)
		if commission != c.commission || net != c.net {
			t.Fatalf("ComputeCommission(%v, %v) = %v, %v; want %v, %v",
				c.amount, c.rate, commission, net, c.commission, c.net)
		}
		if commission+net != c.amount {
			t.Fatalf("commission %v + net %v != amount %v", commission, net, c.amount)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(2.346); got != 2.35 {
		t.Fatalf("Round2(2.346) = %v", got)
	}
	if got := Round2(-2.346); got != -2.35 {
		t.Fatalf("Round2(-2.346) = %v", got)
	}
	if got := Round2(10); got != 10 {
		t.Fatalf("Round2(10) = %v", got)
	}
}

func TestFormatRupiah(t *testing.T) {
	if got := FormatRupiah(1500000); got != "Rp1.500.000" {
		t.Fatalf("FormatRupiah(1500000) = %q", got)
	}
	if got := FormatRupiah(0); got != "Rp0" {
		t.Fatalf("FormatRupiah(0) = %q", got)
	}
	if got := FormatRupiah(-2500); got != "-Rp2.500" {
		t.Fatalf("FormatRupiah(-2500) = %q", got)
	}
}

func TestParseRupiahToInt(t *testing.T) {
	for _, c := range []struct {
		in   string
		want int64
	}{
		{"Rp 1.000", 1000},
		{"1,000", 1000},
		{"rp15000", 15000},
	} {
		got, err := ParseRupiahToInt(c.in)
		if err != nil {
			t.Fatalf("ParseRupiahToInt(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseRupiahToInt(%q) = %d, want %d", c.in, got, c.want)
		}
	}
	if _, err := ParseRupiahToInt("Rp"); err == nil {
		t.Fatalf("empty amount should fail")
	}
}
