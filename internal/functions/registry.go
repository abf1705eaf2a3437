package functions

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	apperrors "agent-proxy/pkg/errors"
	"agent-proxy/pkg/logger"
)

// DirectFunc is a directly registered callable. Arguments arrive as the
// parsed argument map; the returned value is stringified into the function
// result content.
type DirectFunc func(ctx context.Context, args map[string]any) (any, error)

// Callable is implemented by bound receivers that are invoked without a
// method name.
type Callable interface {
	Call(ctx context.Context, args map[string]any) (any, error)
}

// Entry registers one callable under a function name. Exactly one of Func
// and Receiver must be set. Method optionally names the receiver method to
// invoke; bound receivers keep their state between calls, so the same
// instance serves every invocation of the function name. BoundArgs are
// merged over the parsed arguments and win on key collision.
type Entry struct {
	Func      DirectFunc
	Receiver  any
	Method    string
	BoundArgs map[string]any
}

// NotFoundError reports a function name with no registry entry.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Function %s not found.", e.Name)
}

// Registry maps function names to callables on the peer's behalf.
type Registry struct {
	entries map[string]Entry
	logger  *zap.Logger
}

// NewRegistry builds a registry from the given entries, failing fast on any
// entry that has both or neither of a direct callable and a bound receiver.
func NewRegistry(entries map[string]Entry) (*Registry, error) {
	r := &Registry{
		entries: make(map[string]Entry, len(entries)),
		logger:  logger.Named("functions"),
	}
	for name, entry := range entries {
		if err := r.Register(name, entry); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a single entry, enforcing the one-variant invariant.
func (r *Registry) Register(name string, entry Entry) error {
	hasFunc := entry.Func != nil
	hasReceiver := entry.Receiver != nil
	if hasFunc == hasReceiver {
		return apperrors.NewInvalidFunctionEntry(name)
	}
	r.entries[name] = entry
	return nil
}

// Names returns the registered function names.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// Call resolves and invokes the named function with arguments parsed from
// rawArgs. Lookup misses, invocation errors and panics all come back as a
// plain error; nothing escapes past this boundary. A nil registry behaves
// like an empty one.
func (r *Registry) Call(ctx context.Context, name, rawArgs string) (content string, err error) {
	var (
		entry Entry
		ok    bool
	)
	if r != nil {
		entry, ok = r.entries[name]
	}
	if !ok {
		return "", &NotFoundError{Name: name}
	}

	args := ParseArguments(rawArgs)
	for k, v := range entry.BoundArgs {
		args[k] = v
	}

	defer func() {
		if p := recover(); p != nil {
			if r != nil {
				r.logger.Warn("function panicked",
					zap.String("function", name),
					zap.Any("panic", p),
				)
			}
			content = ""
			err = fmt.Errorf("%v", p)
		}
	}()

	fn, err := entry.resolve()
	if err != nil {
		return "", err
	}
	ret, err := fn(ctx, args)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%v", ret), nil
}

// resolve picks the callable for this entry: the direct function, the named
// method on the bound receiver, or the receiver itself when no method name
// was given.
func (e Entry) resolve() (DirectFunc, error) {
	if e.Func != nil {
		return e.Func, nil
	}
	if e.Method != "" {
		m := reflect.ValueOf(e.Receiver).MethodByName(e.Method)
		if m.IsValid() {
			fn, ok := m.Interface().(func(context.Context, map[string]any) (any, error))
			if !ok {
				return nil, fmt.Errorf("method %s on %T has unsupported signature", e.Method, e.Receiver)
			}
			return DirectFunc(fn), nil
		}
		// fall through: an unknown method name defaults to calling the
		// receiver itself
	}
	if c, ok := e.Receiver.(Callable); ok {
		return c.Call, nil
	}
	return nil, fmt.Errorf("receiver %T is not callable", e.Receiver)
}
