package checkout

import "sort"

// FieldInfo describes one input of a payment method entry.
type FieldInfo struct {
	Type          string   `json:"type"`
	Required      bool     `json:"required"`
	ReadOnly      bool     `json:"read_only"`
	Label         string   `json:"label"`
	Default       any      `json:"default,omitempty"`
	MaxLength     int      `json:"max_length,omitempty"`
	MaxDigits     int      `json:"max_digits,omitempty"`
	DecimalPlaces int      `json:"decimal_places,omitempty"`
	Choices       []Choice `json:"choices,omitempty"`
}

// Choice is an allowed value of a choice field.
type Choice struct {
	Value       string `json:"value"`
	DisplayName string `json:"display_name"`
}

// MethodInfo describes a payment method and the payment entry it accepts.
type MethodInfo struct {
	Code     string               `json:"-"`
	Type     string               `json:"type"`
	Required bool                 `json:"required"`
	ReadOnly bool                 `json:"read_only"`
	Label    string               `json:"label"`
	Children map[string]FieldInfo `json:"children"`
}

func (d *checkoutDomain) PaymentMethods(req RequestContext) ([]MethodInfo, error) {
	methods, err := d.registry.Permitted(req)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(methods))
	for code := range methods {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]MethodInfo, 0, len(codes))
	for _, code := range codes {
		out = append(out, describeMethod(methods[code]))
	}
	return out, nil
}

func describeMethod(m PaymentMethod) MethodInfo {
	return MethodInfo{
		Code:  m.Code(),
		Type:  "nested object",
		Label: m.Name(),
		Children: map[string]FieldInfo{
			"method_type": {
				Type:     "choice",
				Required: true,
				Label:    "Method type",
				Choices:  []Choice{{Value: m.Code(), DisplayName: m.Name()}},
			},
			"enabled":     {Type: "boolean", Label: "Enabled", Default: false},
			"pay_balance": {Type: "boolean", Label: "Pay balance", Default: true},
			"amount": {
				Type:          "decimal",
				Label:         "Amount",
				MaxDigits:     12,
				DecimalPlaces: 2,
			},
			"reference": {Type: "string", Label: "Reference", Default: "", MaxLength: maxReferenceLength},
		},
	}
}
