package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Unit families. Units within a family interconvert through a fixed
// factor (units per one family base unit); cross-family conversion is
// undefined and always an error.
const (
	FamilyWeight = "weight"
	FamilyVolume = "volume"
	FamilyCount  = "count"
)

const (
	UnitKg    = "kg"
	UnitGram  = "gram"
	UnitLiter = "liter"
	UnitMl    = "ml"
	UnitPiece = "piece"
	UnitPack  = "pack"
)

type unitInfo struct {
	family string
	factor decimal.Decimal // units per family base unit
}

var units = map[string]unitInfo{
	UnitKg:    {FamilyWeight, decimal.NewFromInt(1)},
	UnitGram:  {FamilyWeight, decimal.NewFromInt(1000)},
	UnitLiter: {FamilyVolume, decimal.NewFromInt(1)},
	UnitMl:    {FamilyVolume, decimal.NewFromInt(1000)},
	UnitPiece: {FamilyCount, decimal.NewFromInt(1)},
	UnitPack:  {FamilyCount, decimal.NewFromInt(1)},
}

// ValidUnit reports whether the unit name is known.
func ValidUnit(u string) bool {
	_, ok := units[u]
	return ok
}

// UnitFamily returns the family a unit belongs to, or "" if unknown.
func UnitFamily(u string) string {
	return units[u].family
}

// ConvertQuantity expresses qty given in `from` units as a quantity of
// `to` units. Both must belong to the same family.
func ConvertQuantity(qty decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fi, ok := units[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown unit %q", from)
	}
	ti, ok := units[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown unit %q", to)
	}
	if fi.family != ti.family {
		return decimal.Zero, fmt.Errorf("cannot convert unit %s to %s", from, to)
	}
	// qty/from-factor is the family-base amount; scale up to target units.
	return qty.Div(fi.factor).Mul(ti.factor), nil
}
