package checkout

import (
	"fmt"
	"sort"
)

// MethodFactory builds a payment method from its configuration kwargs.
type MethodFactory func(deps MethodDeps, kwargs map[string]any) (PaymentMethod, error)

// PermissionFactory builds a permission from its configuration kwargs.
type PermissionFactory func(kwargs map[string]any) (Permission, error)

// MethodConfig enables one payment method behind a permission.
type MethodConfig struct {
	Method           string
	Permission       string
	MethodKwargs     map[string]any
	PermissionKwargs map[string]any
}

type registeredMethod struct {
	method     PaymentMethod
	permission Permission
}

// Registry resolves configured payment methods and their permissions.
type Registry struct {
	methodFactories     map[string]MethodFactory
	permissionFactories map[string]PermissionFactory
	enabled             []registeredMethod
}

// NewRegistry creates a registry with the built-in methods and permissions.
func NewRegistry() *Registry {
	r := &Registry{
		methodFactories:     make(map[string]MethodFactory),
		permissionFactories: make(map[string]PermissionFactory),
	}

	r.RegisterMethod("cash", func(deps MethodDeps, _ map[string]any) (PaymentMethod, error) {
		return NewCash(deps), nil
	})
	r.RegisterMethod("pay-later", func(deps MethodDeps, _ map[string]any) (PaymentMethod, error) {
		return NewPayLater(deps), nil
	})
	r.RegisterMethod("credit-card", func(deps MethodDeps, kwargs map[string]any) (PaymentMethod, error) {
		return NewCreditCard(deps, kwargs), nil
	})
	r.RegisterMethod("client-side-card", func(deps MethodDeps, kwargs map[string]any) (PaymentMethod, error) {
		return NewClientSideCard(deps, kwargs), nil
	})

	r.RegisterPermission("public", func(map[string]any) (Permission, error) { return Public{}, nil })
	r.RegisterPermission("staff_only", func(map[string]any) (Permission, error) { return StaffOnly{}, nil })
	r.RegisterPermission("customer_only", func(map[string]any) (Permission, error) { return CustomerOnly{}, nil })
	return r
}

// RegisterMethod adds or replaces a method factory.
func (r *Registry) RegisterMethod(name string, factory MethodFactory) {
	r.methodFactories[name] = factory
}

// RegisterPermission adds or replaces a permission factory.
func (r *Registry) RegisterPermission(name string, factory PermissionFactory) {
	r.permissionFactories[name] = factory
}

// Configure instantiates the enabled methods in configuration order.
func (r *Registry) Configure(deps MethodDeps, configs []MethodConfig) error {
	enabled := make([]registeredMethod, 0, len(configs))
	seen := make(map[string]bool, len(configs))

	for _, cfg := range configs {
		mf, ok := r.methodFactories[cfg.Method]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMethod, cfg.Method)
		}
		permName := cfg.Permission
		if permName == "" {
			permName = "public"
		}
		pf, ok := r.permissionFactories[permName]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPermission, permName)
		}

		method, err := mf(deps, cfg.MethodKwargs)
		if err != nil {
			return fmt.Errorf("build payment method %q: %w", cfg.Method, err)
		}
		if seen[method.Code()] {
			return fmt.Errorf("payment method %q enabled twice", method.Code())
		}
		seen[method.Code()] = true

		permission, err := pf(cfg.PermissionKwargs)
		if err != nil {
			return fmt.Errorf("build permission %q: %w", permName, err)
		}
		enabled = append(enabled, registeredMethod{method: method, permission: permission})
	}

	r.enabled = enabled
	return nil
}

// Permitted returns the enabled methods the request may use, keyed by code.
func (r *Registry) Permitted(req RequestContext) (map[string]PaymentMethod, error) {
	out := make(map[string]PaymentMethod)
	for _, m := range r.enabled {
		if m.permission.IsPermitted(req) {
			out[m.method.Code()] = m.method
		}
	}
	if len(out) == 0 {
		return nil, ErrNoMethodsPermitted
	}
	return out, nil
}

// Method returns an enabled method by code regardless of permission.
// Callbacks use it to finish payments that were already started.
func (r *Registry) Method(code string) (PaymentMethod, bool) {
	for _, m := range r.enabled {
		if m.method.Code() == code {
			return m.method, true
		}
	}
	return nil, false
}

// Codes returns the codes of all enabled methods, sorted.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.enabled))
	for _, m := range r.enabled {
		codes = append(codes, m.method.Code())
	}
	sort.Strings(codes)
	return codes
}
