package cacheable

import (
	"context"

	"github.com/goliatone/go-cacheable/cache"
	"go.uber.org/zap"
)

// Wrap returns fn decorated with the interceptor for class.method.
// Args passed to the returned function take part in key derivation; ctx does not.
// Registration can happen before or after wrapping; it is checked on every call.
func Wrap[T any](i *Interceptor, class, method string, fn func(ctx context.Context, args ...any) (T, error)) func(ctx context.Context, args ...any) (T, error) {
	return func(ctx context.Context, args ...any) (T, error) {
		inv := Invocation{Class: class, Method: method, Args: args}
		return call(ctx, i, inv, func(ctx context.Context) (T, error) {
			return fn(ctx, args...)
		})
	}
}

// Wrap1 is Wrap for single argument operations.
func Wrap1[A, T any](i *Interceptor, class, method string, fn func(ctx context.Context, a A) (T, error)) func(ctx context.Context, a A) (T, error) {
	return func(ctx context.Context, a A) (T, error) {
		inv := Invocation{Class: class, Method: method, Args: []any{a}}
		return call(ctx, i, inv, func(ctx context.Context) (T, error) {
			return fn(ctx, a)
		})
	}
}

// Func registers class.method with opts and wraps fn.
func Func[T any](i *Interceptor, class, method string, opts cache.Options, fn func(ctx context.Context, args ...any) (T, error)) func(ctx context.Context, args ...any) (T, error) {
	i.registry.Register(class, method, opts)
	return Wrap(i, class, method, fn)
}

// Func1 registers class.method with opts and wraps the single argument fn.
func Func1[A, T any](i *Interceptor, class, method string, opts cache.Options, fn func(ctx context.Context, a A) (T, error)) func(ctx context.Context, a A) (T, error) {
	i.registry.Register(class, method, opts)
	return Wrap1(i, class, method, fn)
}

func call[T any](ctx context.Context, i *Interceptor, inv Invocation, body func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	value, err := i.Intercept(ctx, inv, func(ctx context.Context) (any, error) {
		return body(ctx)
	})
	if err != nil {
		return zero, err
	}

	typed, err := cache.As[T](value)
	if err == nil {
		return typed, nil
	}

	// Entry of another type: run the body and overwrite it.
	i.logger.Warn("discarding cached value of unexpected type",
		zap.String("class", inv.Class),
		zap.String("method", inv.Method),
		zap.Error(err),
	)
	fresh, err := body(ctx)
	if err != nil {
		return zero, err
	}
	if key, ok := i.Key(inv); ok {
		opts, _ := i.registry.Lookup(inv.Class, inv.Method)
		i.populate(ctx, key, fresh, opts)
	}
	return fresh, nil
}
