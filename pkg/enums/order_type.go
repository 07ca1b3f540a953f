package enums

import "fmt"

// OrderType classifies how an order reaches the kitchen.
type OrderType string

const (
	OrderTypeDineIn         OrderType = "dine_in"
	OrderTypeTakeaway       OrderType = "takeaway"
	OrderTypeDelivery       OrderType = "delivery"
	OrderTypeQROrder        OrderType = "qr_order"
	OrderTypeDirectTakeaway OrderType = "direct_takeaway"
	OrderTypeDirectDelivery OrderType = "direct_delivery"
	OrderTypeThirdParty     OrderType = "third_party"
)

var validOrderTypes = []OrderType{
	OrderTypeDineIn,
	OrderTypeTakeaway,
	OrderTypeDelivery,
	OrderTypeQROrder,
	OrderTypeDirectTakeaway,
	OrderTypeDirectDelivery,
	OrderTypeThirdParty,
}

// String implements fmt.Stringer.
func (o OrderType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderType.
func (o OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// Code returns the short token embedded in KOT numbers for this type.
func (o OrderType) Code() string {
	switch o {
	case OrderTypeDineIn:
		return "DI"
	case OrderTypeTakeaway:
		return "TA"
	case OrderTypeDelivery:
		return "DL"
	case OrderTypeQROrder:
		return "QR"
	case OrderTypeDirectTakeaway:
		return "DT"
	case OrderTypeDirectDelivery:
		return "DD"
	case OrderTypeThirdParty:
		return "TP"
	default:
		return "XX"
	}
}

// ParseOrderType converts raw input into an OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
