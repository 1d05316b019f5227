package batch

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/dmitrijs2005/permalink/internal/common"
)

// DefaultBufferPercent is the safety margin applied when none is configured.
const DefaultBufferPercent int64 = 5

var (
	hundred     = big.NewInt(100)
	weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

// BufferedFunding returns ceil(price * (100 + bufferPercent) / 100) using
// integer arithmetic only.
func BufferedFunding(price *big.Int, bufferPercent int64) (*big.Int, error) {
	if price == nil || price.Sign() < 0 {
		return nil, fmt.Errorf("%w: funding amount must be non-negative", common.ErrInvalidArgument)
	}
	if bufferPercent < 0 {
		return nil, fmt.Errorf("%w: buffer percent must be non-negative", common.ErrInvalidArgument)
	}

	numerator := new(big.Int).Mul(price, big.NewInt(100+bufferPercent))
	numerator.Add(numerator, big.NewInt(99))
	return numerator.Quo(numerator, hundred), nil
}

// FormatEther renders wei as a decimal ether string with at most six
// fractional digits and no trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	sign := ""
	abs := new(big.Int).Abs(wei)
	if wei.Sign() < 0 {
		sign = "-"
	}

	whole, frac := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))
	digits := frac.String()
	digits = strings.Repeat("0", 18-len(digits)) + digits
	fraction := strings.TrimRight(digits[:6], "0")

	if fraction == "" {
		return sign + whole.String()
	}
	return sign + whole.String() + "." + fraction
}
