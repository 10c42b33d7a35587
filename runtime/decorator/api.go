package decorator

// defaultRegistry backs the package-level functions. It starts empty and is
// only populated through Decorate and Register.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// ResolveMember resolves property on target in the default registry.
func ResolveMember(target any, property string) (*Member, error) {
	return defaultRegistry.ResolveMember(target, property)
}

// Decorate applies decorators to property on target in the default registry.
func Decorate(target any, property string, decorators ...Decorator) error {
	return defaultRegistry.Decorate(target, property, decorators...)
}

// Register stores one key/value pair in the default registry.
func Register(target any, property, key string, value any) error {
	return defaultRegistry.Register(target, property, key, value)
}

// Lookup reads keys from the default registry.
func Lookup(target any, property string, keys ...string) (Table, error) {
	return defaultRegistry.Lookup(target, property, keys...)
}

// Call invokes the installed definition in the default registry.
func Call(target any, property string, receiver any, args ...any) ([]any, error) {
	return defaultRegistry.Call(target, property, receiver, args...)
}

// Reset clears the default registry (used for testing).
func Reset() {
	defaultRegistry.Reset()
}
