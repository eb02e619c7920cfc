package outbound

// SignerPort signs and verifies opaque tokens. The salt namespaces tokens so
// one kind cannot be replayed as another.
type SignerPort interface {
	// Sign returns a token carrying value.
	Sign(salt, value string) (string, error)

	// Unsign verifies a token and returns the value it carries.
	Unsign(salt, token string) (string, error)
}
