package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/checkout/internal/model"
	"go.uber.org/zap"
)

type MockPaymentMethod struct {
	mock.Mock
	code string
}

func (m *MockPaymentMethod) Code() string { return m.code }

func (m *MockPaymentMethod) Name() string { return m.code }

func (m *MockPaymentMethod) RecordPayment(ctx context.Context, req RequestContext, order *model.Order, methodKey string, amount *decimal.Decimal, reference string) (model.PaymentState, error) {
	args := m.Called(ctx, req, order, methodKey, amount, reference)
	return args.Get(0).(model.PaymentState), args.Error(1)
}

func (m *MockPaymentMethod) VoidExistingPayment(ctx context.Context, req RequestContext, order *model.Order, methodKey string, prior model.PaymentState) error {
	return m.Called(ctx, req, order, methodKey, prior).Error(0)
}

func amountIs(s string) interface{} {
	return mock.MatchedBy(func(a *decimal.Decimal) bool {
		return a != nil && a.Equal(decimal.RequireFromString(s))
	})
}

func recorderOrder(total string) *model.Order {
	return &model.Order{ID: uuid.New(), Number: "ORD-1", TotalInclTax: decimal.RequireFromString(total)}
}

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()
	req := anonymous()

	t.Run("pay balance receives the remainder", func(t *testing.T) {
		cash := &MockPaymentMethod{code: "cash"}
		card := &MockPaymentMethod{code: "credit-card"}
		o := recorderOrder("10.00")
		two := amount("2.00")

		cash.On("RecordPayment", ctx, req, o, "cash", amountIs("2.00"), "").
			Return(model.NewPaymentState(model.PaymentMethodComplete, amount("2.00"), nil), nil)
		card.On("RecordPayment", ctx, req, o, "credit-card", amountIs("8.00"), "").
			Return(model.NewPaymentState(model.PaymentMethodPending, amount("8.00"), nil), nil)

		var decisions []RecordDecision
		r := NewRecorder(func(_ string, d RecordDecision) { decisions = append(decisions, d) }, zap.NewNop())
		states, err := r.Record(ctx, req, nil, o,
			map[string]PaymentMethod{"cash": cash, "credit-card": card},
			PaymentSplit{
				"cash":        {MethodType: "cash", Amount: &two},
				"credit-card": {MethodType: "credit-card", PayBalance: true},
			})
		require.NoError(t, err)
		assert.Len(t, states, 2)
		assert.True(t, states.Total().Equal(o.TotalInclTax))
		assert.Equal(t, []RecordDecision{DecisionFresh, DecisionFresh}, decisions)
		cash.AssertExpectations(t)
		card.AssertExpectations(t)
	})

	t.Run("unchanged amount recycles the previous state", func(t *testing.T) {
		card := &MockPaymentMethod{code: "credit-card"}
		o := recorderOrder("10.00")
		prev := States{"credit-card": model.NewPaymentState(model.PaymentMethodComplete, amount("10.00"), nil)}

		var decisions []RecordDecision
		r := NewRecorder(func(_ string, d RecordDecision) { decisions = append(decisions, d) }, zap.NewNop())
		states, err := r.Record(ctx, req, prev, o,
			map[string]PaymentMethod{"credit-card": card},
			PaymentSplit{"credit-card": {MethodType: "credit-card", PayBalance: true}})
		require.NoError(t, err)
		assert.Equal(t, prev["credit-card"], states["credit-card"])
		assert.Equal(t, []RecordDecision{DecisionRecycle}, decisions)
		card.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		card.AssertNotCalled(t, "VoidExistingPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("changed amount voids and recharges", func(t *testing.T) {
		card := &MockPaymentMethod{code: "credit-card"}
		o := recorderOrder("12.00")
		prior := model.NewPaymentState(model.PaymentMethodComplete, amount("10.00"), nil)

		card.On("VoidExistingPayment", ctx, req, o, "credit-card", prior).Return(nil).Once()
		card.On("RecordPayment", ctx, req, o, "credit-card", amountIs("12.00"), "").
			Return(model.NewPaymentState(model.PaymentMethodPending, amount("12.00"), nil), nil).Once()

		var decisions []RecordDecision
		r := NewRecorder(func(_ string, d RecordDecision) { decisions = append(decisions, d) }, zap.NewNop())
		states, err := r.Record(ctx, req, States{"credit-card": prior}, o,
			map[string]PaymentMethod{"credit-card": card},
			PaymentSplit{"credit-card": {MethodType: "credit-card", PayBalance: true}})
		require.NoError(t, err)
		assert.Equal(t, model.PaymentMethodPending, states["credit-card"].Status)
		assert.Equal(t, []RecordDecision{DecisionRecharge}, decisions)
		card.AssertExpectations(t)
	})

	t.Run("switching method voids with the previous method", func(t *testing.T) {
		cash := &MockPaymentMethod{code: "cash"}
		card := &MockPaymentMethod{code: "credit-card"}
		o := recorderOrder("10.00")
		prior := model.NewPaymentState(model.PaymentMethodComplete, amount("10.00"), nil)
		prior.MethodCode = "cash"

		cash.On("VoidExistingPayment", ctx, req, o, "pay", prior).Return(nil).Once()
		card.On("RecordPayment", ctx, req, o, "pay", amountIs("10.00"), "").
			Return(model.NewPaymentState(model.PaymentMethodPending, amount("10.00"), nil), nil).Once()

		var decisions []RecordDecision
		r := NewRecorder(func(_ string, d RecordDecision) { decisions = append(decisions, d) }, zap.NewNop())
		states, err := r.Record(ctx, req, States{"pay": prior}, o,
			map[string]PaymentMethod{"cash": cash, "credit-card": card},
			PaymentSplit{"pay": {MethodType: "credit-card", PayBalance: true}})
		require.NoError(t, err)
		assert.Equal(t, []RecordDecision{DecisionRecharge}, decisions)
		assert.Equal(t, "credit-card", states["pay"].MethodCode)
		cash.AssertExpectations(t)
		card.AssertExpectations(t)
		card.AssertNotCalled(t, "VoidExistingPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("previous method no longer offered", func(t *testing.T) {
		card := &MockPaymentMethod{code: "credit-card"}
		o := recorderOrder("10.00")
		prior := model.NewPaymentState(model.PaymentMethodComplete, amount("10.00"), nil)
		prior.MethodCode = "cash"

		r := NewRecorder(nil, zap.NewNop())
		_, err := r.Record(ctx, req, States{"pay": prior}, o,
			map[string]PaymentMethod{"credit-card": card},
			PaymentSplit{"pay": {MethodType: "credit-card", PayBalance: true}})
		assert.ErrorIs(t, err, ErrUnknownMethod)
		card.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("terminal previous states are charged fresh", func(t *testing.T) {
		for _, status := range []model.PaymentMethodStatus{model.PaymentMethodDeclined, model.PaymentMethodConsumed} {
			card := &MockPaymentMethod{code: "credit-card"}
			o := recorderOrder("10.00")

			card.On("RecordPayment", ctx, req, o, "credit-card", amountIs("10.00"), "").
				Return(model.NewPaymentState(model.PaymentMethodPending, amount("10.00"), nil), nil).Once()

			r := NewRecorder(nil, zap.NewNop())
			_, err := r.Record(ctx, req,
				States{"credit-card": model.NewPaymentState(status, amount("10.00"), nil)}, o,
				map[string]PaymentMethod{"credit-card": card},
				PaymentSplit{"credit-card": {MethodType: "credit-card", PayBalance: true}})
			require.NoError(t, err)
			card.AssertExpectations(t)
			card.AssertNotCalled(t, "VoidExistingPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("keys missing from the split are dropped", func(t *testing.T) {
		cash := &MockPaymentMethod{code: "cash"}
		o := recorderOrder("10.00")
		cash.On("RecordPayment", ctx, req, o, "cash", amountIs("10.00"), "").
			Return(model.NewPaymentState(model.PaymentMethodComplete, amount("10.00"), nil), nil)

		prev := States{"pay-later": model.NewPaymentState(model.PaymentMethodDeferred, decimal.Zero, nil)}
		r := NewRecorder(nil, zap.NewNop())
		states, err := r.Record(ctx, req, prev, o,
			map[string]PaymentMethod{"cash": cash},
			PaymentSplit{"cash": {MethodType: "cash", PayBalance: true}})
		require.NoError(t, err)
		assert.NotContains(t, states, "pay-later")
		assert.Contains(t, states, "cash")
	})

	t.Run("negative balance is clamped to zero", func(t *testing.T) {
		cash := &MockPaymentMethod{code: "cash"}
		card := &MockPaymentMethod{code: "credit-card"}
		o := recorderOrder("5.00")
		eight := amount("8.00")

		card.On("RecordPayment", ctx, req, o, "credit-card", amountIs("8.00"), "").
			Return(model.NewPaymentState(model.PaymentMethodComplete, amount("8.00"), nil), nil)
		cash.On("RecordPayment", ctx, req, o, "cash", amountIs("0"), "").
			Return(model.NewPaymentState(model.PaymentMethodComplete, decimal.Zero, nil), nil)

		r := NewRecorder(nil, zap.NewNop())
		_, err := r.Record(ctx, req, nil, o,
			map[string]PaymentMethod{"cash": cash, "credit-card": card},
			PaymentSplit{
				"cash":        {MethodType: "cash", PayBalance: true},
				"credit-card": {MethodType: "credit-card", Amount: &eight},
			})
		require.NoError(t, err)
		cash.AssertExpectations(t)
	})

	t.Run("unknown method type", func(t *testing.T) {
		r := NewRecorder(nil, zap.NewNop())
		_, err := r.Record(ctx, req, nil, recorderOrder("1.00"),
			map[string]PaymentMethod{},
			PaymentSplit{"cash": {MethodType: "cash", PayBalance: true}})
		assert.ErrorIs(t, err, ErrUnknownMethod)
	})

	t.Run("method errors are wrapped", func(t *testing.T) {
		cash := &MockPaymentMethod{code: "cash"}
		o := recorderOrder("1.00")
		boom := errors.New("gateway down")
		cash.On("RecordPayment", ctx, req, o, "cash", amountIs("1.00"), "").
			Return(model.PaymentState{}, boom)

		r := NewRecorder(nil, zap.NewNop())
		_, err := r.Record(ctx, req, nil, o,
			map[string]PaymentMethod{"cash": cash},
			PaymentSplit{"cash": {MethodType: "cash", PayBalance: true}})
		assert.ErrorIs(t, err, boom)
	})
}
