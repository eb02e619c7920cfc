package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethodStatus is the outcome of one payment method within a checkout.
type PaymentMethodStatus string

const (
	PaymentMethodPending  PaymentMethodStatus = "Pending"
	PaymentMethodDeclined PaymentMethodStatus = "Declined"
	PaymentMethodComplete PaymentMethodStatus = "Complete"
	PaymentMethodDeferred PaymentMethodStatus = "Deferred"
	PaymentMethodConsumed PaymentMethodStatus = "Consumed"
)

// String returns the string representation of the status.
func (s PaymentMethodStatus) String() string {
	return string(s)
}

// IsValid checks if the status is known.
func (s PaymentMethodStatus) IsValid() bool {
	switch s {
	case PaymentMethodPending, PaymentMethodDeclined, PaymentMethodComplete,
		PaymentMethodDeferred, PaymentMethodConsumed:
		return true
	}
	return false
}

// IsTerminal returns true for statuses that no longer change within one checkout attempt.
func (s PaymentMethodStatus) IsTerminal() bool {
	return s == PaymentMethodDeclined || s == PaymentMethodConsumed
}

// IsReusable reports whether a state with this status may be recycled by a later attempt.
func (s PaymentMethodStatus) IsReusable() bool {
	return !s.IsTerminal()
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s PaymentMethodStatus) CanTransitionTo(target PaymentMethodStatus) bool {
	switch s {
	case PaymentMethodPending:
		return target == PaymentMethodPending || target == PaymentMethodComplete ||
			target == PaymentMethodDeclined || target == PaymentMethodDeferred
	case PaymentMethodDeferred:
		return target == PaymentMethodPending || target == PaymentMethodComplete
	case PaymentMethodComplete:
		return target == PaymentMethodConsumed
	case PaymentMethodDeclined, PaymentMethodConsumed:
		return false
	default:
		return false
	}
}

// Required action types.
const (
	ActionTypeForm              = "form"
	ActionTypeClientSidePayment = "client-side-payment"
)

// ErrUnknownActionType is returned when decoding an unrecognised required action.
var ErrUnknownActionType = errors.New("unknown required action type")

// RequiredAction tells the client how to continue a pending payment.
type RequiredAction interface {
	ActionType() string
}

// FormField is one key/value pair of a form post.
type FormField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FormAction requires the client to POST Fields to URL.
type FormAction struct {
	Name   string      `json:"name"`
	URL    string      `json:"url"`
	Method string      `json:"method"`
	Fields []FormField `json:"fields"`
}

// ActionType implements RequiredAction.
func (FormAction) ActionType() string { return ActionTypeForm }

// MarshalJSON adds the type discriminant.
func (a FormAction) MarshalJSON() ([]byte, error) {
	type alias FormAction
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: ActionTypeForm, alias: alias(a)})
}

// ClientSideAction requires the client to run a hosted payment SDK.
type ClientSideAction struct {
	PaymentProcessor string         `json:"payment_processor"`
	Data             map[string]any `json:"data"`
}

// ActionType implements RequiredAction.
func (ClientSideAction) ActionType() string { return ActionTypeClientSidePayment }

// MarshalJSON adds the type discriminant.
func (a ClientSideAction) MarshalJSON() ([]byte, error) {
	type alias ClientSideAction
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: ActionTypeClientSidePayment, alias: alias(a)})
}

// PaymentState is the tagged union recorded for one method key.
// Only Pending states carry a RequiredAction.
type PaymentState struct {
	Status         PaymentMethodStatus
	Amount         decimal.Decimal
	SourceID       *uuid.UUID
	RequiredAction RequiredAction
	// MethodCode is the code of the method that produced the state.
	// It is stored with the session but never sent to clients.
	MethodCode string
}

// NewPaymentState builds a state without a required action.
func NewPaymentState(status PaymentMethodStatus, amount decimal.Decimal, sourceID *uuid.UUID) PaymentState {
	return PaymentState{Status: status, Amount: amount, SourceID: sourceID}
}

// NewFormPostRequired builds a Pending state asking the client for a form post.
func NewFormPostRequired(amount decimal.Decimal, name, url string, fields []FormField) PaymentState {
	return PaymentState{
		Status: PaymentMethodPending,
		Amount: amount,
		RequiredAction: FormAction{
			Name:   name,
			URL:    url,
			Method: "POST",
			Fields: fields,
		},
	}
}

// NewClientSidePaymentRequired builds a Pending state asking the client to run an SDK.
func NewClientSidePaymentRequired(amount decimal.Decimal, processor string, data map[string]any) PaymentState {
	return PaymentState{
		Status: PaymentMethodPending,
		Amount: amount,
		RequiredAction: ClientSideAction{
			PaymentProcessor: processor,
			Data:             data,
		},
	}
}

// WithStatus returns a copy of the state moved to status. Non-pending states drop their action.
func (s PaymentState) WithStatus(status PaymentMethodStatus) PaymentState {
	out := s
	out.Status = status
	if status != PaymentMethodPending {
		out.RequiredAction = nil
	}
	return out
}

type paymentStateJSON struct {
	Status         PaymentMethodStatus `json:"status"`
	Amount         string              `json:"amount"`
	SourceID       *uuid.UUID          `json:"source_id,omitempty"`
	RequiredAction json.RawMessage     `json:"required_action"`
	MethodCode     string              `json:"method_code,omitempty"`
}

// MarshalJSON encodes the state with a two-place decimal amount.
func (s PaymentState) MarshalJSON() ([]byte, error) {
	action := json.RawMessage("null")
	if s.RequiredAction != nil && s.Status == PaymentMethodPending {
		b, err := json.Marshal(s.RequiredAction)
		if err != nil {
			return nil, fmt.Errorf("marshal required action: %w", err)
		}
		action = b
	}
	return json.Marshal(paymentStateJSON{
		Status:         s.Status,
		Amount:         s.Amount.StringFixed(2),
		SourceID:       s.SourceID,
		RequiredAction: action,
		MethodCode:     s.MethodCode,
	})
}

// UnmarshalJSON decodes a state, rejecting unknown statuses and action types.
func (s *PaymentState) UnmarshalJSON(data []byte) error {
	var raw paymentStateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Status.IsValid() {
		return fmt.Errorf("unknown payment method status %q", raw.Status)
	}
	amount, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}

	out := PaymentState{Status: raw.Status, Amount: amount, SourceID: raw.SourceID, MethodCode: raw.MethodCode}
	if len(raw.RequiredAction) > 0 && string(raw.RequiredAction) != "null" {
		action, err := decodeRequiredAction(raw.RequiredAction)
		if err != nil {
			return err
		}
		out.RequiredAction = action
	}
	*s = out
	return nil
}

func decodeRequiredAction(data []byte) (RequiredAction, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case ActionTypeForm:
		var a FormAction
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return a, nil
	case ActionTypeClientSidePayment:
		var a ClientSideAction
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, head.Type)
	}
}

// PaymentStateResponse is the client-facing view of a state.
type PaymentStateResponse struct {
	Status         PaymentMethodStatus `json:"status"`
	Amount         string              `json:"amount"`
	RequiredAction RequiredAction      `json:"required_action"`
}

// ToResponse converts a state to its client-facing view.
func (s PaymentState) ToResponse() PaymentStateResponse {
	resp := PaymentStateResponse{
		Status: s.Status,
		Amount: s.Amount.StringFixed(2),
	}
	if s.Status == PaymentMethodPending {
		resp.RequiredAction = s.RequiredAction
	}
	return resp
}
