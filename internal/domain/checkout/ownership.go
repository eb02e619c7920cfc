package checkout

// OwnershipFunc decides who owns an order: a user, or a guest identified by email.
type OwnershipFunc func(req RequestContext, givenUser *User, guestEmail string) (*User, string)

// DefaultOwnership gives authenticated requesters the order and treats
// everyone else as a guest.
func DefaultOwnership(req RequestContext, _ *User, guestEmail string) (*User, string) {
	if req.User != nil {
		return req.User, ""
	}
	return nil, guestEmail
}
