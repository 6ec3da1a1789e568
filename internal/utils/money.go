package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Round2 rounds to 2 decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeCommission splits amount by a 0-100 percent rate. The commission is
// rounded first and net is the remainder, so commission+net == amount.
func ComputeCommission(amount, ratePercent float64) (commission, net float64) {
	commission = Round2(amount * ratePercent / 100)
	net = Round2(amount - commission)
	return commission, net
}

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatRupiah renders integer amount with thousand separators.
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%sRp%s", sign, formatThousand(amount))
}

// ParseRupiahToInt parses "Rp 1.000" or "1,000" into an integer amount of Rupiah.
func ParseRupiahToInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToLower(s), "rp")
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer(".", "", ",", "", " ", "")
	s = replacer.Replace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid rupiah amount")
	}
	return strconv.ParseInt(s, 10, 64)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(c)
	}
	return out.String()
}
