package reconcile

import (
	"strconv"
	"strings"

	"egais-writeoff/models"
)

// draftAffirmative is the on-tap flag value marking draft beer
const draftAffirmative = "да"

// AttributeShape is the positional layout of a product's attributes in MoySklad.
//
// The upstream contract is ordinal:
//   - one attribute: the "alcoholic product" flag;
//   - two attributes: index 0 is the "on tap / keg" flag, index 1 the alcoholic flag.
//
// Any other count has no known meaning. A missing flag and a false flag are
// indistinguishable here; newer product cards may not follow this layout.
type AttributeShape int

const (
	ShapeNone AttributeShape = iota
	ShapeAlcoholFlag
	ShapeDraftAndAlcoholFlags
	ShapeUnknown
)

// ProductFlags is the named view over the positional attributes
type ProductFlags struct {
	Shape     AttributeShape
	Alcoholic bool
	OnTap     string
}

// IsDraft reports whether the on-tap flag marks the product as draft beer
func (f ProductFlags) IsDraft() bool {
	return f.Shape == ShapeDraftAndAlcoholFlags && strings.ToLower(strings.TrimSpace(f.OnTap)) == draftAffirmative
}

// DecodeAttributes is the only place that interprets attribute positions
func DecodeAttributes(attrs []models.Attribute) ProductFlags {
	switch len(attrs) {
	case 0:
		return ProductFlags{Shape: ShapeNone}
	case 1:
		return ProductFlags{Shape: ShapeAlcoholFlag, Alcoholic: truthy(attrs[0].Value)}
	case 2:
		return ProductFlags{
			Shape:     ShapeDraftAndAlcoholFlags,
			OnTap:     stringValue(attrs[0].Value),
			Alcoholic: truthy(attrs[1].Value),
		}
	default:
		return ProductFlags{Shape: ShapeUnknown}
	}
}

// Includes reports whether a line item with the given flags belongs to the product type.
//   - alcohol: one truthy flag, or two flags where the first is not the draft affirmative;
//   - non-alcohol: one falsy flag;
//   - snack: no attributes at all.
func Includes(goodType models.ProductType, flags ProductFlags) bool {
	switch goodType {
	case models.ProductTypeAlcohol:
		switch flags.Shape {
		case ShapeAlcoholFlag:
			return flags.Alcoholic
		case ShapeDraftAndAlcoholFlags:
			return !flags.IsDraft()
		}
		return false
	case models.ProductTypeNonAlcohol:
		return flags.Shape == ShapeAlcoholFlag && !flags.Alcoholic
	case models.ProductTypeSnack:
		return flags.Shape == ShapeNone
	}
	return false
}

func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case map[string]interface{}:
		return len(val) > 0
	case []interface{}:
		return len(val) > 0
	}
	return true
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case map[string]interface{}:
		// custom entity reference, e.g. {"meta": {...}, "name": "Да"}
		if name, ok := val["name"].(string); ok {
			return name
		}
	}
	return ""
}
