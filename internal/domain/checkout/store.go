package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
)

// StateStore keeps the method-key to payment state mapping of a checkout session.
type StateStore struct {
	sessions outbound.CheckoutSessionPort
}

// NewStateStore creates a state store backed by session storage.
func NewStateStore(sessions outbound.CheckoutSessionPort) *StateStore {
	return &StateStore{sessions: sessions}
}

// Session loads the whole session.
func (s *StateStore) Session(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	session, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load checkout session: %w", err)
	}
	if session.PaymentStates == nil {
		session.PaymentStates = make(map[string]model.PaymentState)
	}
	return session, nil
}

// List returns the session's payment states.
func (s *StateStore) List(ctx context.Context, sessionID string) (States, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return States(session.PaymentStates), nil
}

// Set replaces every payment state of the session.
func (s *StateStore) Set(ctx context.Context, sessionID string, states States) error {
	return s.modify(ctx, sessionID, func(session *model.CheckoutSession) {
		session.PaymentStates = states.Clone()
	})
}

// Update stores the state of one method key.
func (s *StateStore) Update(ctx context.Context, sessionID, methodKey string, state model.PaymentState) error {
	return s.modify(ctx, sessionID, func(session *model.CheckoutSession) {
		session.PaymentStates[methodKey] = state
	})
}

// Clear removes every payment state of the session.
func (s *StateStore) Clear(ctx context.Context, sessionID string) error {
	return s.modify(ctx, sessionID, func(session *model.CheckoutSession) {
		session.PaymentStates = make(map[string]model.PaymentState)
	})
}

// ClearConsumed removes only the Consumed states.
func (s *StateStore) ClearConsumed(ctx context.Context, sessionID string) error {
	return s.modify(ctx, sessionID, func(session *model.CheckoutSession) {
		session.PaymentStates = States(session.PaymentStates).WithoutConsumed()
	})
}

// SetOrder records the order the session is working on.
func (s *StateStore) SetOrder(ctx context.Context, sessionID string, orderID uuid.UUID) error {
	return s.modify(ctx, sessionID, func(session *model.CheckoutSession) {
		session.OrderID = &orderID
	})
}

// Save stores a session loaded with Session.
func (s *StateStore) Save(ctx context.Context, sessionID string, session *model.CheckoutSession) error {
	if err := s.sessions.Save(ctx, sessionID, session); err != nil {
		return fmt.Errorf("save checkout session: %w", err)
	}
	return nil
}

func (s *StateStore) modify(ctx context.Context, sessionID string, fn func(*model.CheckoutSession)) error {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	fn(session)
	return s.Save(ctx, sessionID, session)
}
