package outbound

import "context"

// TransactionPort defines transaction support shared by the checkout adapters.
type TransactionPort interface {
	// RunInTransaction executes fn within a transaction. Adapters called with the
	// context passed to fn join that transaction.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
