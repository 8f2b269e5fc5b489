package types

import "github.com/shopspring/decimal"

// Decimal is the exact, arbitrary-precision type used for every price and
// quantity in the core. shopspring/decimal stores values as an unscaled
// big.Int plus a power-of-ten exponent, so add/sub/mul/compare are exact;
// division (used only for avg_price) is carried to a high fixed precision
// instead of truncating at the library's default of 16 digits, so the one
// divisive computation in the core does not introduce visible rounding for
// any realistic price/quantity pair.
type Decimal = decimal.Decimal

func init() {
	decimal.DivisionPrecision = 34
}

// Zero is the canonical zero-value Decimal.
var Zero = decimal.Zero
