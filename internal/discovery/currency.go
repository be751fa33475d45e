package discovery

import "fmt"

// currencyMultipliers converts a price threshold from the saved list's
// reference currency into the viewer country's currency. Countries not
// listed keep the value unchanged.
var currencyMultipliers = map[string]float64{
	"MX": 25,
	"RU": 75,
	"ZA": 12.5,
}

// ConvertPrice applies the viewer country's fixed multiplier.
func ConvertPrice(value float64, country string) float64 {
	if m, ok := currencyMultipliers[country]; ok {
		return value * m
	}
	return value
}

// FormatPrice renders a price with the country's symbol placement and
// decimal style.
func FormatPrice(value float64, country string) string {
	switch country {
	case "AR", "CA", "CL", "MX", "US":
		return fmt.Sprintf("$%.2f", value)
	case "FR", "DE":
		return fmt.Sprintf("%.2f €", value)
	case "BR":
		return fmt.Sprintf("R$ %.2f", value)
	case "GB":
		return fmt.Sprintf("£%.2f", value)
	case "RU":
		return fmt.Sprintf("%.0f RUB", value)
	case "ZA":
		return fmt.Sprintf("R%.2f", value)
	}
	return fmt.Sprintf("%.2f", value)
}
