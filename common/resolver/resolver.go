package resolver

import (
	"fmt"
	"os"
)

// Resolver resolves a service, getting an address or URL.
type Resolver interface {
	// Resolve resolves a service, getting an address or URL (or an error)
	Resolve() (string, error)
}

// ConstantResolver always returns the same value
type ConstantResolver struct {
	s string
}

// NewConstantResolver creates a ConstantResolver
func NewConstantResolver(s string) *ConstantResolver {
	return &ConstantResolver{s: s}
}

func (r *ConstantResolver) Resolve() (string, error) {
	return r.s, nil
}

func (r *ConstantResolver) String() string {
	return fmt.Sprintf("constant(%q)", r.s)
}

// EnvResolver resolves by looking for a key in the OS Environment
type EnvResolver struct {
	key string
}

func NewEnvResolver(key string) *EnvResolver {
	return &EnvResolver{key: key}
}

func (r *EnvResolver) Resolve() (string, error) {
	return os.Getenv(r.key), nil
}

func (r *EnvResolver) String() string {
	return fmt.Sprintf("env(%s)", r.key)
}

// CompositeResolver resolves by resolving, in order, via delegates.
// The first delegate that returns a value or an error wins.
type CompositeResolver struct {
	dels []Resolver
}

func NewCompositeResolver(dels ...Resolver) *CompositeResolver {
	return &CompositeResolver{dels: dels}
}

func (r *CompositeResolver) Resolve() (string, error) {
	for _, r := range r.dels {
		if s, err := r.Resolve(); s != "" || err != nil {
			return s, err
		}
	}
	return "", fmt.Errorf("could not resolve: no delegate resolved: %v", r.dels)
}
