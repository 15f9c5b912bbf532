package common

import (
	"fmt"
	"math"
	"strconv"
)

var magnitudes = []struct {
	threshold float64
	suffix    string
}{
	{1e12, " T"},
	{1e9, " B"},
	{1e6, " M"},
	{1e3, " K"},
}

// FormatValue renders a monetary amount with a magnitude suffix,
// e.g. 1_230_000_000_000 -> "1.23 T". Values below one thousand are printed as-is.
func FormatValue(n int64) string {
	f := float64(n)
	for _, m := range magnitudes {
		if math.Abs(f) >= m.threshold {
			return fmt.Sprintf("%.2f%s", f/m.threshold, m.suffix)
		}
	}
	return strconv.FormatInt(n, 10)
}
