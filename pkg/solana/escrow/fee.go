package escrow

import (
	"github.com/holiman/uint256"
)

// CalculateFee returns floor(amount * feeBps / 10000). The product is taken
// over 256 bits and narrowed back to 64 bits with an explicit check.
func CalculateFee(amount uint64, feeBps uint16) (uint64, error) {
	product, overflow := new(uint256.Int).MulOverflow(
		uint256.NewInt(amount),
		uint256.NewInt(uint64(feeBps)),
	)
	if overflow {
		return 0, ErrorArithmeticOverflow
	}

	fee := product.Div(product, uint256.NewInt(bpsDenominator))
	if !fee.IsUint64() {
		return 0, ErrorArithmeticOverflow
	}
	return fee.Uint64(), nil
}

// CalculateDeposit returns the fee and the total amount a depositor pays to
// escrow amount at the provided fee rate.
func CalculateDeposit(amount uint64, feeBps uint16) (fee, total uint64, err error) {
	fee, err = CalculateFee(amount, feeBps)
	if err != nil {
		return 0, 0, err
	}

	total, err = checkedAdd(amount, fee)
	if err != nil {
		return 0, 0, err
	}
	return fee, total, nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(a), uint256.NewInt(b))
	if overflow || !sum.IsUint64() {
		return 0, ErrorArithmeticOverflow
	}
	return sum.Uint64(), nil
}
