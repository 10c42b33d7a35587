package decorator

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Registry holds installed member definitions and their metadata tables,
// keyed by (type, method name). Types are compared by identity, not by name.
// The zero value is not usable; use NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	members map[memberID]*Member

	// decorateMu serializes whole Decorate cycles so the duplicate-key
	// check and the install happen as one step.
	decorateMu sync.Mutex

	logger *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		members: make(map[memberID]*Member),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveMember returns the current definition of property on target.
// target may be a value, a typed nil pointer or a reflect.Type.
// The returned member is a copy; changing it does not affect the registry.
func (r *Registry) ResolveMember(target any, property string) (*Member, error) {
	fresh, err := resolve(target, property)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	installed, ok := r.members[fresh.id()]
	r.mu.RUnlock()

	if ok {
		return installed.clone(), nil
	}
	return fresh, nil
}

// Decorate applies decorators in order to the current definition of
// property on target and installs the result under the same key. If any
// decorator fails nothing is installed.
//
// Decorators must not call Decorate on the same registry.
func (r *Registry) Decorate(target any, property string, decorators ...Decorator) error {
	r.decorateMu.Lock()
	defer r.decorateMu.Unlock()

	current, err := r.ResolveMember(target, property)
	if err != nil {
		return err
	}
	key, id := current.Key, current.id()

	for _, decorate := range decorators {
		next, err := decorate(current)
		if err != nil {
			r.logger.Warn("decorator rejected",
				zap.String("member", key.String()),
				zap.Error(err),
			)
			return err
		}
		if next == nil {
			return newError(ErrInvalidTarget, key, "")
		}
		current = next
	}

	current.Key, current.base = key, id.base
	r.mu.Lock()
	r.members[id] = current.clone()
	r.mu.Unlock()

	r.logger.Debug("member installed",
		zap.String("member", key.String()),
		zap.Strings("keys", current.table.Keys()),
	)
	return nil
}

// Register stores value under key for property on target.
func (r *Registry) Register(target any, property, key string, value any) error {
	return r.Decorate(target, property, AddMetadata(key, value))
}

// Lookup returns the requested keys for property on target.
func (r *Registry) Lookup(target any, property string, keys ...string) (Table, error) {
	m, err := r.ResolveMember(target, property)
	if err != nil {
		return nil, err
	}
	return GetMetadataKeys(m, keys...)
}

// Metadata returns a copy of the full table for property on target, or nil
// if nothing has been stored.
func (r *Registry) Metadata(target any, property string) (Table, error) {
	m, err := r.ResolveMember(target, property)
	if err != nil {
		return nil, err
	}
	return GetMetadata(m), nil
}

// Call invokes the installed definition of property with receiver and args.
func (r *Registry) Call(target any, property string, receiver any, args ...any) ([]any, error) {
	m, err := r.ResolveMember(target, property)
	if err != nil {
		return nil, err
	}
	if !m.Func.IsValid() {
		return nil, newError(ErrPropertyNotFound, m.Key, "")
	}

	in, err := callArgs(m.Func.Type(), append([]any{receiver}, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Key, err)
	}

	out := m.Func.Call(in)
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}

func callArgs(fnType reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := fnType.NumIn()
	if fnType.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("%w: want at least %d, got %d", ErrInvalidArguments, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrInvalidArguments, fixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var want reflect.Type
		if i < fixed {
			want = fnType.In(i)
		} else {
			want = fnType.In(fixed).Elem()
		}

		if arg == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(want) && v.Kind() == reflect.Pointer && !v.IsNil() && v.Type().Elem().AssignableTo(want) {
			v = v.Elem()
		}
		if !v.Type().AssignableTo(want) {
			return nil, fmt.Errorf("%w: argument %d is %s, want %s", ErrInvalidArguments, i, v.Type(), want)
		}
		in[i] = v
	}
	return in, nil
}

// Members returns the keys of every installed member, sorted. Distinct
// types with the same qualified name each contribute an entry.
func (r *Registry) Members() []MemberKey {
	installed := r.installed()
	keys := make([]MemberKey, len(installed))
	for i, m := range installed {
		keys[i] = m.Key
	}
	return keys
}

// installed returns copies of every installed member sorted by key name.
func (r *Registry) installed() []*Member {
	r.mu.RLock()
	members := make([]*Member, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, m.clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Key.String() < members[j].Key.String()
	})
	return members
}

// Reset removes every installed member.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = make(map[memberID]*Member)
}
