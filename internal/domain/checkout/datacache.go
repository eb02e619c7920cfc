package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uniedit/checkout/internal/model"
	"github.com/uniedit/checkout/internal/port/outbound"
)

// Kinds of checkout data staged per basket.
const (
	DataEmailAddress    = "email_address"
	DataShippingAddress = "shipping_address"
	DataBillingAddress  = "billing_address"
	DataShippingMethod  = "shipping_method"
)

// DefaultDataCacheTTL is how long staged checkout data is kept.
const DefaultDataCacheTTL = 24 * time.Hour

var dataKinds = []string{DataEmailAddress, DataShippingAddress, DataBillingAddress, DataShippingMethod}

// maxShippingPrice bounds a shipping price to twelve digits with two decimals.
var maxShippingPrice = decimal.New(1, 10)

// ShippingMethodChoice is the shipping method picked before the order is placed.
type ShippingMethodChoice struct {
	Code  string          `json:"code" binding:"required,max=128"`
	Name  string          `json:"name" binding:"required,max=128"`
	Price decimal.Decimal `json:"price"`
}

// CheckoutData is what a client may stage for a basket ahead of checkout.
// Empty fields are not staged.
type CheckoutData struct {
	Email           string                `json:"email_address,omitempty"`
	ShippingAddress *model.Address        `json:"shipping_address,omitempty"`
	BillingAddress  *model.Address        `json:"billing_address,omitempty"`
	ShippingMethod  *ShippingMethodChoice `json:"shipping_method,omitempty"`
}

// IsEmpty reports whether nothing is staged.
func (d *CheckoutData) IsEmpty() bool {
	return d.Email == "" && d.ShippingAddress == nil && d.BillingAddress == nil && d.ShippingMethod == nil
}

type emailValue struct {
	Email string `json:"email" binding:"required,email"`
}

// DataCache stages checkout data per basket in a CheckoutCachePort.
// With validation enabled every value is checked before it is stored.
type DataCache struct {
	cache    outbound.CheckoutCachePort
	ttl      time.Duration
	validate *validator.Validate
}

// NewDataCache creates a checkout data cache. A non-positive ttl uses DefaultDataCacheTTL.
func NewDataCache(cache outbound.CheckoutCachePort, ttl time.Duration, validate bool) *DataCache {
	if ttl <= 0 {
		ttl = DefaultDataCacheTTL
	}
	c := &DataCache{cache: cache, ttl: ttl}
	if validate {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.SetTagName("binding")
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		c.validate = v
	}
	return c
}

func dataKey(kind string, basketID uuid.UUID) string {
	return "checkout:data:" + kind + ":" + basketID.String()
}

// Store stages the non-empty fields of data for the basket.
func (c *DataCache) Store(ctx context.Context, basketID uuid.UUID, data *CheckoutData) error {
	if data.Email != "" {
		if err := c.SetEmail(ctx, basketID, data.Email); err != nil {
			return err
		}
	}
	if data.ShippingAddress != nil {
		if err := c.SetShippingAddress(ctx, basketID, data.ShippingAddress); err != nil {
			return err
		}
	}
	if data.BillingAddress != nil {
		if err := c.SetBillingAddress(ctx, basketID, data.BillingAddress); err != nil {
			return err
		}
	}
	if data.ShippingMethod != nil {
		if err := c.SetShippingMethod(ctx, basketID, data.ShippingMethod); err != nil {
			return err
		}
	}
	return nil
}

// Load returns everything staged for the basket.
func (c *DataCache) Load(ctx context.Context, basketID uuid.UUID) (*CheckoutData, error) {
	email, err := c.Email(ctx, basketID)
	if err != nil {
		return nil, err
	}
	shipping, err := c.ShippingAddress(ctx, basketID)
	if err != nil {
		return nil, err
	}
	billing, err := c.BillingAddress(ctx, basketID)
	if err != nil {
		return nil, err
	}
	method, err := c.ShippingMethod(ctx, basketID)
	if err != nil {
		return nil, err
	}
	return &CheckoutData{Email: email, ShippingAddress: shipping, BillingAddress: billing, ShippingMethod: method}, nil
}

// SetEmail stages the guest email address.
func (c *DataCache) SetEmail(ctx context.Context, basketID uuid.UUID, email string) error {
	return c.set(ctx, DataEmailAddress, basketID, &emailValue{Email: email})
}

// Email returns the staged email address, or "" when none is staged.
func (c *DataCache) Email(ctx context.Context, basketID uuid.UUID) (string, error) {
	var v emailValue
	if _, err := c.get(ctx, DataEmailAddress, basketID, &v); err != nil {
		return "", err
	}
	return v.Email, nil
}

// SetShippingAddress stages the shipping address.
func (c *DataCache) SetShippingAddress(ctx context.Context, basketID uuid.UUID, addr *model.Address) error {
	return c.set(ctx, DataShippingAddress, basketID, addr)
}

// ShippingAddress returns the staged shipping address, or nil.
func (c *DataCache) ShippingAddress(ctx context.Context, basketID uuid.UUID) (*model.Address, error) {
	return c.address(ctx, DataShippingAddress, basketID)
}

// SetBillingAddress stages the billing address.
func (c *DataCache) SetBillingAddress(ctx context.Context, basketID uuid.UUID, addr *model.Address) error {
	return c.set(ctx, DataBillingAddress, basketID, addr)
}

// BillingAddress returns the staged billing address, or nil.
func (c *DataCache) BillingAddress(ctx context.Context, basketID uuid.UUID) (*model.Address, error) {
	return c.address(ctx, DataBillingAddress, basketID)
}

// SetShippingMethod stages the shipping method.
func (c *DataCache) SetShippingMethod(ctx context.Context, basketID uuid.UUID, method *ShippingMethodChoice) error {
	if c.validate != nil {
		verr := &ValidationError{}
		if !method.Price.Equal(method.Price.Round(2)) {
			verr.Add(DataShippingMethod+".price", "Ensure that there are no more than 2 decimal places.")
		}
		if method.Price.Abs().GreaterThanOrEqual(maxShippingPrice) {
			verr.Add(DataShippingMethod+".price", "Ensure that there are no more than 12 digits in total.")
		}
		if verr.HasErrors() {
			return verr
		}
	}
	return c.set(ctx, DataShippingMethod, basketID, method)
}

// ShippingMethod returns the staged shipping method, or nil.
func (c *DataCache) ShippingMethod(ctx context.Context, basketID uuid.UUID) (*ShippingMethodChoice, error) {
	var m ShippingMethodChoice
	found, err := c.get(ctx, DataShippingMethod, basketID, &m)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

// Invalidate drops everything staged for the basket.
func (c *DataCache) Invalidate(ctx context.Context, basketID uuid.UUID) error {
	keys := make([]string, 0, len(dataKinds))
	for _, kind := range dataKinds {
		keys = append(keys, dataKey(kind, basketID))
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate checkout data: %w", err)
	}
	return nil
}

func (c *DataCache) address(ctx context.Context, kind string, basketID uuid.UUID) (*model.Address, error) {
	var addr model.Address
	found, err := c.get(ctx, kind, basketID, &addr)
	if err != nil || !found {
		return nil, err
	}
	return &addr, nil
}

func (c *DataCache) set(ctx context.Context, kind string, basketID uuid.UUID, value any) error {
	if c.validate != nil {
		if err := c.validate.Struct(value); err != nil {
			return validationFailure(kind, err)
		}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := c.cache.Set(ctx, dataKey(kind, basketID), data, c.ttl); err != nil {
		return fmt.Errorf("stage %s: %w", kind, err)
	}
	return nil
}

func (c *DataCache) get(ctx context.Context, kind string, basketID uuid.UUID, out any) (bool, error) {
	data, err := c.cache.Get(ctx, dataKey(kind, basketID))
	if err != nil {
		return false, fmt.Errorf("load %s: %w", kind, err)
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", kind, err)
	}
	return true, nil
}

// validationFailure maps validator errors to field messages under kind.
func validationFailure(kind string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %s: %w", kind, err)
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		field := kind
		if fe.Field() != "" && kind != DataEmailAddress {
			field = kind + "." + fe.Field()
		}
		switch fe.Tag() {
		case "required":
			verr.Add(field, "This field is required.")
		case "email":
			verr.Add(field, "Enter a valid email address.")
		case "max":
			verr.Add(field, fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param()))
		default:
			verr.Add(field, "Enter a valid value.")
		}
	}
	return verr
}
