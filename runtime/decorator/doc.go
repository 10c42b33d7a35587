// Package decorator attaches named metadata to methods of Go types and
// reads it back for introspection.
//
// # Overview
//
// Metadata lives in a Registry keyed by a method's receiver type and the
// method name. Types are compared by identity; MemberKey carries the
// qualified name for display. Each key owns a Table that is created
// on the first write and only changes through Decorate. Nothing is attached
// to the type itself.
//
// Writes go through decorators. CreateDecorator wraps an ApplyFunc into a
// Decorator; AddMetadata is the built-in one that stores a single key and
// refuses to overwrite it:
//
//	type Service struct{}
//
//	func (s *Service) Run() error { return nil }
//
//	err := decorator.Decorate((*Service)(nil), "Run",
//		decorator.AddMetadata("owner", "team-a"),
//		decorator.AddMetadata("version", 2),
//	)
//
// Register is the shorthand for a single AddMetadata:
//
//	err := decorator.Register((*Service)(nil), "Run", "route", "/run")
//
// # Lookup
//
//	values, err := decorator.Lookup((*Service)(nil), "Run", "owner", "version")
//	// values == decorator.Table{"owner": "team-a", "version": 2}
//
// Lookups are all-or-nothing. A missing key fails with ErrKeyNotFound, a
// member that never received metadata fails with ErrMetadataNotFound and an
// empty key fails with ErrInvalidKey. Errors are *Error values and match
// the sentinels with errors.Is.
//
// # Concurrency
//
// A Registry is safe for concurrent use. Decorate calls on one registry are
// serialized, so two writers cannot both pass the duplicate-key check.
package decorator
