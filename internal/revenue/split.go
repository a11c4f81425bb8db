package revenue

import (
	"errors"
	"fmt"
	"math"

	"github.com/MaulRai/tiku/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

// TotalBasisPoints 全部收益对应的基点数（10000 = 100%）
const TotalBasisPoints int64 = 10000

// DefaultEpsilon 百分比合计校验的默认容差
const DefaultEpsilon = 0.01

// ToBasisPoints 百分比转基点，四舍五入到最近的整数基点
func ToBasisPoints(percentage float64) int64 {
	return int64(math.Round(percentage * 100))
}

// FromBasisPoints 基点转百分比
func FromBasisPoints(basisPoints int64) float64 {
	return float64(basisPoints) / 100
}

// ValidateTotalPercentage 校验百分比合计是否为100%（容差epsilon）
// 表单输入为浮点数，允许舍入噪声，但拒绝真实的缺口或超额
func ValidateTotalPercentage(percentages []float64, epsilon float64) bool {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}

	sum := 0.0
	for _, p := range percentages {
		sum += p
	}

	return math.Abs(sum-100) < epsilon
}

// ValidateSplit 校验受益人分成方案
// 提交前的全量校验：地址合法、基点在(0,10000]内、合计恰好为10000
func ValidateSplit(beneficiaries []model.RevenueBeneficiary) error {
	if len(beneficiaries) == 0 {
		return errors.New("受益人列表不能为空")
	}

	var sum int64
	seen := make(map[string]bool)
	for i, b := range beneficiaries {
		if !common.IsHexAddress(b.Address) {
			return fmt.Errorf("受益人 %d 的钱包地址无效: %s", i+1, b.Address)
		}
		addr := common.HexToAddress(b.Address).Hex()
		if seen[addr] {
			return fmt.Errorf("受益人钱包地址重复: %s", b.Address)
		}
		seen[addr] = true

		if b.BasisPoints <= 0 || b.BasisPoints > TotalBasisPoints {
			return fmt.Errorf("受益人 %d 的分成基点无效: %d", i+1, b.BasisPoints)
		}
		sum += b.BasisPoints
	}

	if sum != TotalBasisPoints {
		return fmt.Errorf("受益人分成合计必须为10000基点，当前为%d", sum)
	}

	return nil
}
