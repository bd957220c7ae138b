// Package schemareg dispatches named schema registry operations.
//
// Every transport (the MCP server, the CLI) invokes operations through a
// HandlerRegistry, so middleware such as validation, logging and metrics
// applies uniformly.
package schemareg

import (
	"context"
	"fmt"
	"sort"
)

// ByteHandler processes a JSON payload and returns the operation's output.
type ByteHandler func(ctx context.Context, payload []byte) ([]byte, error)

type operationKey struct{}

// WithOperationName returns a context carrying the name of the running operation.
func WithOperationName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationKey{}, name)
}

// OperationName returns the running operation's name, or "" outside an operation.
func OperationName(ctx context.Context) string {
	name, _ := ctx.Value(operationKey{}).(string)
	return name
}

// HandlerRegistry maps operation names to handlers wrapped in middleware.
type HandlerRegistry struct {
	handlers map[string]ByteHandler
}

// RegistryOption is a functional option for configuring a HandlerRegistry.
type RegistryOption func(*registryBuilder)

type registryBuilder struct {
	handlers   map[string]ByteHandler
	order      []string
	middleware []Middleware
	err        error
}

// WithHandler registers handler under name.
func WithHandler(name string, handler ByteHandler) RegistryOption {
	return func(b *registryBuilder) {
		if b.err != nil {
			return
		}
		if name == "" || handler == nil {
			b.err = fmt.Errorf("handler registration requires a name and a handler")
			return
		}
		if _, exists := b.handlers[name]; exists {
			b.err = fmt.Errorf("operation already registered: %s", name)
			return
		}
		b.handlers[name] = handler
		b.order = append(b.order, name)
	}
}

// WithMiddleware appends middleware. The first registered wraps outermost.
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}

// NewHandlerRegistry builds a registry from options.
func NewHandlerRegistry(opts ...RegistryOption) (*HandlerRegistry, error) {
	b := &registryBuilder{handlers: make(map[string]ByteHandler)}
	for _, opt := range opts {
		opt(b)
	}
	if b.err != nil {
		return nil, b.err
	}

	r := &HandlerRegistry{handlers: make(map[string]ByteHandler, len(b.handlers))}
	for _, name := range b.order {
		h := b.handlers[name]
		for i := len(b.middleware) - 1; i >= 0; i-- {
			h = b.middleware[i](h)
		}
		r.handlers[name] = h
	}
	return r, nil
}

// Invoke runs the named operation.
func (r *HandlerRegistry) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, NewUnknownOperationError(name)
	}
	return h(WithOperationName(ctx, name), payload)
}

// Has reports whether an operation is registered.
func (r *HandlerRegistry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Names returns the registered operation names, sorted.
func (r *HandlerRegistry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
