package decorator

// ApplyFunc mutates a member definition in place.
type ApplyFunc func(m *Member) error

// Decorator transforms a member definition and returns the definition to install.
type Decorator func(m *Member) (*Member, error)

// CreateDecorator turns apply into a Decorator. apply may replace m.Func
// with a wrapper around the previous definition; the callable is otherwise
// installed unchanged.
func CreateDecorator(apply ApplyFunc) Decorator {
	return func(m *Member) (*Member, error) {
		if m == nil {
			return nil, newError(ErrInvalidTarget, MemberKey{}, "")
		}
		if err := apply(m); err != nil {
			return nil, err
		}
		return m, nil
	}
}

// AddMetadata returns a Decorator that stores value under key in the
// member's table, creating the table on first write. An existing key is
// never overwritten.
func AddMetadata(key string, value any) Decorator {
	return CreateDecorator(func(m *Member) error {
		if key == "" {
			return newError(ErrInvalidKey, m.Key, key)
		}
		if m.table == nil {
			m.table = make(Table)
		} else if _, exists := m.table[key]; exists {
			return newError(ErrKeyAlreadyExists, m.Key, key)
		}

		m.table[key] = value
		return nil
	})
}

// GetMetadata returns a copy of the member's table, or nil when the member
// has none.
func GetMetadata(m *Member) Table {
	if m == nil {
		return nil
	}
	return m.table.clone()
}

// GetMetadataKeys returns the requested keys from the member's table. Either
// every key resolves or an error is returned with no partial result.
func GetMetadataKeys(m *Member, keys ...string) (Table, error) {
	var memberKey MemberKey
	var table Table
	if m != nil {
		memberKey = m.Key
		table = m.table
	}

	result := make(Table, len(keys))
	for _, key := range keys {
		if key == "" {
			return nil, newError(ErrInvalidKey, memberKey, key)
		}
		if table == nil {
			return nil, newError(ErrMetadataNotFound, memberKey, key)
		}
		value, ok := table[key]
		if !ok {
			return nil, newError(ErrKeyNotFound, memberKey, key)
		}
		result[key] = value
	}
	return result, nil
}

// GetMetadataKey returns the value stored under key.
func GetMetadataKey(m *Member, key string) (any, error) {
	values, err := GetMetadataKeys(m, key)
	if err != nil {
		return nil, err
	}
	return values[key], nil
}
