package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/checkout/internal/domain/order"
	"github.com/uniedit/checkout/internal/model"
	"go.uber.org/zap"
)

// --- In-memory ports ---

type memOrderDB struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*model.Order
	prices map[uuid.UUID][]model.OrderLinePrice
}

func newMemOrderDB() *memOrderDB {
	return &memOrderDB{
		orders: make(map[uuid.UUID]*model.Order),
		prices: make(map[uuid.UUID][]model.OrderLinePrice),
	}
}

func copyOrder(o *model.Order) *model.Order {
	c := *o
	c.Lines = append([]model.OrderLine(nil), o.Lines...)
	c.Discounts = append([]model.OrderDiscount(nil), o.Discounts...)
	return &c
}

func (m *memOrderDB) Create(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = copyOrder(o)
	return nil
}

func (m *memOrderDB) Update(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[o.ID]
	if !ok {
		return errors.New("order not stored")
	}
	c := copyOrder(o)
	c.Lines = stored.Lines
	c.Discounts = stored.Discounts
	m.orders[o.ID] = c
	return nil
}

func (m *memOrderDB) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		return copyOrder(o), nil
	}
	return nil, nil
}

func (m *memOrderDB) GetByNumber(_ context.Context, number string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.Number == number {
			return copyOrder(o), nil
		}
	}
	return nil, nil
}

func (m *memOrderDB) LockByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return m.GetByID(ctx, id)
}

func (m *memOrderDB) ListByBasket(_ context.Context, basketID uuid.UUID) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Order
	for _, o := range m.orders {
		if o.BasketID == basketID {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

func (m *memOrderDB) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return errors.New("order not stored")
	}
	o.Status = status
	return nil
}

func (m *memOrderDB) ReplaceLines(_ context.Context, orderID uuid.UUID, lines []model.OrderLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[orderID].Lines = append([]model.OrderLine(nil), lines...)
	delete(m.prices, orderID)
	return nil
}

func (m *memOrderDB) CreateLinePrices(_ context.Context, prices []model.OrderLinePrice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range prices {
		m.prices[p.OrderID] = append(m.prices[p.OrderID], p)
	}
	return nil
}

func (m *memOrderDB) DeleteLinePrices(_ context.Context, orderID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prices, orderID)
	return nil
}

func (m *memOrderDB) ReplaceDiscounts(_ context.Context, orderID uuid.UUID, discounts []model.OrderDiscount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[orderID].Discounts = append([]model.OrderDiscount(nil), discounts...)
	return nil
}

func (m *memOrderDB) CountByAddress(_ context.Context, kind model.AddressKind, hash string, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, o := range m.orders {
		h := o.ShippingAddressHash
		if kind == model.AddressBilling {
			h = o.BillingAddressHash
		}
		if h == hash && !o.PlacedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type memBasketDB struct {
	mu      sync.Mutex
	baskets map[uuid.UUID]*model.Basket
	// onLock runs before LockByID reads the basket.
	onLock func(id uuid.UUID)
}

func newMemBasketDB() *memBasketDB {
	return &memBasketDB{baskets: make(map[uuid.UUID]*model.Basket)}
}

func (m *memBasketDB) put(b *model.Basket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baskets[b.ID] = b
}

func (m *memBasketDB) GetByID(_ context.Context, id uuid.UUID) (*model.Basket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.baskets[id]
	if !ok {
		return nil, nil
	}
	c := *b
	c.Lines = append([]model.BasketLine(nil), b.Lines...)
	c.Vouchers = append([]model.Voucher(nil), b.Vouchers...)
	return &c, nil
}

func (m *memBasketDB) LockByID(ctx context.Context, id uuid.UUID) (*model.Basket, error) {
	if m.onLock != nil {
		m.onLock(id)
	}
	return m.GetByID(ctx, id)
}

func (m *memBasketDB) GetOpenByOwner(_ context.Context, ownerID uuid.UUID) (*model.Basket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.baskets {
		if b.OwnerID != nil && *b.OwnerID == ownerID && b.Status == model.BasketStatusOpen {
			c := *b
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memBasketDB) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baskets[id].Status = status
	return nil
}

func (m *memBasketDB) UpdateOwner(_ context.Context, id uuid.UUID, ownerID *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baskets[id].OwnerID = ownerID
	return nil
}

func (m *memBasketDB) status(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baskets[id].Status
}

type memStockDB struct {
	mu      sync.Mutex
	records map[string]*model.StockRecord
}

func newMemStockDB() *memStockDB {
	return &memStockDB{records: make(map[string]*model.StockRecord)}
}

func (m *memStockDB) GetBySKUs(_ context.Context, skus []string) (map[string]*model.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*model.StockRecord)
	for _, sku := range skus {
		if r, ok := m.records[sku]; ok {
			c := *r
			out[sku] = &c
		}
	}
	return out, nil
}

func (m *memStockDB) Allocate(_ context.Context, sku string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[sku].NumAllocated += qty
	return nil
}

func (m *memStockDB) CancelAllocation(_ context.Context, sku string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[sku].NumAllocated -= qty
	return nil
}

type memVoucherDB struct {
	mu       sync.Mutex
	vouchers map[uuid.UUID]*model.Voucher
	apps     []*model.VoucherApplication
}

func newMemVoucherDB() *memVoucherDB {
	return &memVoucherDB{vouchers: make(map[uuid.UUID]*model.Voucher)}
}

func (m *memVoucherDB) LockByIDs(_ context.Context, ids []uuid.UUID) ([]*model.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Voucher
	for _, id := range ids {
		if v, ok := m.vouchers[id]; ok {
			c := *v
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memVoucherDB) CreateApplication(_ context.Context, app *model.VoucherApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps = append(m.apps, app)
	m.vouchers[app.VoucherID].NumOrders++
	return nil
}

func (m *memVoucherDB) DeleteApplicationsByOrder(_ context.Context, orderID uuid.UUID) ([]*model.VoucherApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept, removed []*model.VoucherApplication
	for _, a := range m.apps {
		if a.OrderID == orderID {
			removed = append(removed, a)
			m.vouchers[a.VoucherID].NumOrders--
		} else {
			kept = append(kept, a)
		}
	}
	m.apps = kept
	return removed, nil
}

type memSourceDB struct {
	mu      sync.Mutex
	sources map[uuid.UUID]*model.PaymentSource
}

func newMemSourceDB() *memSourceDB {
	return &memSourceDB{sources: make(map[uuid.UUID]*model.PaymentSource)}
}

func (m *memSourceDB) GetOrCreate(_ context.Context, orderID uuid.UUID, sourceType, reference, currency string) (*model.PaymentSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sources {
		if s.OrderID == orderID && s.SourceType == sourceType && s.Reference == reference {
			c := *s
			return &c, nil
		}
	}
	s := &model.PaymentSource{
		ID:         uuid.New(),
		OrderID:    orderID,
		SourceType: sourceType,
		Reference:  reference,
		Currency:   currency,
	}
	m.sources[s.ID] = s
	c := *s
	return &c, nil
}

func (m *memSourceDB) GetByID(_ context.Context, id uuid.UUID) (*model.PaymentSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sources[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, nil
}

func (m *memSourceDB) ListByOrder(_ context.Context, orderID uuid.UUID) ([]*model.PaymentSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentSource
	for _, s := range m.sources {
		if s.OrderID == orderID {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memSourceDB) Save(_ context.Context, source *model.PaymentSource, txns ...*model.PaymentTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sources[source.ID]
	if !ok {
		return errors.New("source not stored")
	}
	stored.AmountAllocated = source.AmountAllocated
	stored.AmountDebited = source.AmountDebited
	stored.AmountRefunded = source.AmountRefunded
	for _, t := range txns {
		stored.Transactions = append(stored.Transactions, *t)
	}
	return nil
}

func (m *memSourceDB) find(sourceType, reference string) *model.PaymentSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sources {
		if s.SourceType == sourceType && s.Reference == reference {
			c := *s
			return &c
		}
	}
	return nil
}

type memEventDB struct {
	mu     sync.Mutex
	events []*model.PaymentEvent
}

func (m *memEventDB) Create(_ context.Context, e *model.PaymentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memEventDB) ListByOrder(_ context.Context, orderID uuid.UUID) ([]*model.PaymentEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentEvent
	for _, e := range m.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

// memSessions stores sessions as JSON so every request sees a decoded copy.
type memSessions struct {
	mu   sync.Mutex
	data map[string][]byte
	// failSaves is the number of upcoming saves that fail.
	failSaves int
}

func newMemSessions() *memSessions {
	return &memSessions{data: make(map[string][]byte)}
}

func (m *memSessions) Load(_ context.Context, id string) (*model.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[id]
	if !ok {
		return model.NewCheckoutSession(), nil
	}
	var s model.CheckoutSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memSessions) Save(_ context.Context, id string, s *model.CheckoutSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves > 0 {
		m.failSaves--
		return errors.New("session storage unavailable")
	}
	m.data[id] = raw
	return nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

// memCache is a CheckoutCachePort without expiry.
type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
	// err fails every call when set.
	err error
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.items[key], nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// prefixSigner signs values as "salt|value".
type prefixSigner struct{}

func (prefixSigner) Sign(salt, value string) (string, error) {
	return salt + "|" + value, nil
}

func (prefixSigner) Unsign(salt, token string) (string, error) {
	value, ok := strings.CutPrefix(token, salt+"|")
	if !ok {
		return "", ErrInvalidToken
	}
	return value, nil
}

// --- Harness ---

const testSessionID = "session-1"

type harness struct {
	orders    *memOrderDB
	baskets   *memBasketDB
	stock     *memStockDB
	vouchers  *memVoucherDB
	sources   *memSourceDB
	events    *memEventDB
	sessions  *memSessions
	cache     *memCache
	publisher *recordingPublisher
	registry  *Registry
	domain    CheckoutDomain
	decisions []RecordDecision
}

func defaultMethodConfigs() []MethodConfig {
	return []MethodConfig{
		{Method: "cash"},
		{Method: "pay-later"},
		{Method: "credit-card"},
		{Method: "client-side-card"},
	}
}

func newHarness(t *testing.T, configs ...MethodConfig) *harness {
	t.Helper()
	if len(configs) == 0 {
		configs = defaultMethodConfigs()
	}

	logger := zap.NewNop()
	h := &harness{
		orders:    newMemOrderDB(),
		baskets:   newMemBasketDB(),
		stock:     newMemStockDB(),
		vouchers:  newMemVoucherDB(),
		sources:   newMemSourceDB(),
		events:    &memEventDB{},
		sessions:  newMemSessions(),
		cache:     newMemCache(),
		publisher: &recordingPublisher{},
	}

	h.registry = NewRegistry()
	deps := MethodDeps{Sources: h.sources, Events: h.events, Signer: prefixSigner{}, Logger: logger}
	require.NoError(t, h.registry.Configure(deps, configs))

	orders := order.NewOrderDomain(h.orders, passthroughTx{}, h.publisher, logger)
	recorder := NewRecorder(func(_ string, d RecordDecision) {
		h.decisions = append(h.decisions, d)
	}, logger)
	reconciler := NewReconciler(orders, h.orders, h.baskets, h.vouchers, h.publisher, logger)
	placer := NewOrderPlacer(h.orders, h.stock, h.vouchers, logger)

	h.domain = NewCheckoutDomain(
		h.registry,
		NewStateStore(h.sessions),
		NewDataCache(h.cache, 0, true),
		placer,
		recorder,
		reconciler,
		h.orders,
		h.baskets,
		h.stock,
		passthroughTx{},
		h.publisher,
		prefixSigner{},
		nil,
		nil,
		&Config{},
		logger,
	)
	return h
}

// seedBasket stores an open basket with one tracked line of qty units at 5.00.
func (h *harness) seedBasket(qty int) *model.Basket {
	b := &model.Basket{
		ID:       uuid.New(),
		Status:   model.BasketStatusOpen,
		Currency: "USD",
	}
	b.Lines = []model.BasketLine{{
		ID:               uuid.New(),
		BasketID:         b.ID,
		SKU:              "SKU-1",
		Title:            "Widget",
		Quantity:         qty,
		UnitPriceInclTax: decimal.RequireFromString("5.00"),
		UnitPriceExclTax: decimal.RequireFromString("5.00"),
	}}
	h.baskets.put(b)
	h.stock.records["SKU-1"] = &model.StockRecord{SKU: "SKU-1", TrackStock: true, NumInStock: 10}
	return b
}

func (h *harness) setLineQuantity(basketID uuid.UUID, qty int) {
	h.baskets.mu.Lock()
	defer h.baskets.mu.Unlock()
	h.baskets.baskets[basketID].Lines[0].Quantity = qty
}

func anonymous() RequestContext {
	return RequestContext{SessionID: testSessionID}
}

func (h *harness) input(t *testing.T, basket *model.Basket, payment RawPayment) *CheckoutInput {
	t.Helper()
	token, err := h.domain.BasketToken(basket.ID)
	require.NoError(t, err)
	return &CheckoutInput{
		BasketToken:     token,
		GuestEmail:      "guest@example.com",
		ShippingAddress: testAddress(),
		BillingAddress:  testAddress(),
		Payment:         payment,
	}
}

func testAddress() *model.Address {
	return &model.Address{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Line1:     "12 Analytical Row",
		Line4:     "London",
		Postcode:  "N1 9GU",
		Country:   "GB",
	}
}

// payment builds a payment block from method key to raw JSON entry.
func payment(entries map[string]string) RawPayment {
	out := make(RawPayment, len(entries))
	for k, v := range entries {
		out[k] = json.RawMessage(v)
	}
	return out
}

// transactionID extracts the signed transaction id from a pending state.
func transactionID(t *testing.T, state model.PaymentState) string {
	t.Helper()
	switch a := state.RequiredAction.(type) {
	case model.FormAction:
		for _, f := range a.Fields {
			if f.Key == "transaction_id" {
				return f.Value
			}
		}
	case model.ClientSideAction:
		if id, ok := a.Data["transaction_id"].(string); ok {
			return id
		}
	}
	t.Fatalf("state %s has no transaction id", state.Status)
	return ""
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
