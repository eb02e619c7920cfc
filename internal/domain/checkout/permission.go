package checkout

// Permission decides whether a payment method is offered to a request.
type Permission interface {
	IsPermitted(req RequestContext) bool
}

// PermissionFunc adapts a function to Permission.
type PermissionFunc func(req RequestContext) bool

// IsPermitted implements Permission.
func (f PermissionFunc) IsPermitted(req RequestContext) bool {
	return f(req)
}

// Public permits every request.
type Public struct{}

// IsPermitted implements Permission.
func (Public) IsPermitted(RequestContext) bool {
	return true
}

// StaffOnly permits authenticated staff users.
type StaffOnly struct{}

// IsPermitted implements Permission.
func (StaffOnly) IsPermitted(req RequestContext) bool {
	return req.User != nil && req.User.IsStaff
}

// CustomerOnly permits anonymous requests and authenticated non-staff users.
type CustomerOnly struct{}

// IsPermitted implements Permission.
func (CustomerOnly) IsPermitted(req RequestContext) bool {
	return req.User == nil || !req.User.IsStaff
}
