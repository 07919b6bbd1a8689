// Package lens provides an ordered keyed multi-map.
//
// A List keeps a single global insertion order and a per-key view over the
// same values. Both views are maintained on every mutation, so a keyed lookup
// and a flattened snapshot never disagree on relative order.
package lens

// Pair is a single key/value slot of a List.
type Pair[T comparable] struct {
	Key   string
	Value T
}

// List is an ordered keyed multi-map. The zero value is not usable, use New.
// List is not safe for concurrent use.
type List[T comparable] struct {
	list []Pair[T]
	lens map[string][]T
	keys []string
}

// New creates an empty List.
func New[T comparable]() *List[T] {
	return &List[T]{
		list: make([]Pair[T], 0),
		lens: make(map[string][]T),
	}
}

// Get returns an ordered copy of the values stored under key.
func (l *List[T]) Get(key string) []T {
	values := l.lens[key]
	out := make([]T, len(values))
	copy(out, values)
	return out
}

// GetAll returns an ordered copy of every value across all keys.
func (l *List[T]) GetAll() []T {
	out := make([]T, len(l.list))
	for i, pair := range l.list {
		out[i] = pair.Value
	}
	return out
}

// All returns an ordered copy of every key/value pair.
func (l *List[T]) All() []Pair[T] {
	out := make([]Pair[T], len(l.list))
	copy(out, l.list)
	return out
}

// Keys returns the keys in the order they were first used.
func (l *List[T]) Keys() []string {
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}

// Append adds value after every value currently stored under key.
func (l *List[T]) Append(key string, value T) {
	l.list = append(l.list, Pair[T]{Key: key, Value: value})
	l.openLens(key)
	l.lens[key] = append(l.lens[key], value)
}

// Prepend adds value before every value currently stored under key.
// In the global order the value takes the place of the key's first value,
// or goes last when the key is new.
func (l *List[T]) Prepend(key string, value T) {
	pair := Pair[T]{Key: key, Value: value}
	at := len(l.list)
	for i, p := range l.list {
		if p.Key == key {
			at = i
			break
		}
	}

	next := make([]Pair[T], 0, len(l.list)+1)
	next = append(next, l.list[:at]...)
	next = append(next, pair)
	l.list = append(next, l.list[at:]...)
	l.openLens(key)
	l.lens[key] = append([]T{value}, l.lens[key]...)
}

// Delete removes the first occurrence of value under key.
// Deleting an unknown value is a no-op.
func (l *List[T]) Delete(key string, value T) {
	values, ok := l.lens[key]
	if !ok {
		return
	}

	idx := indexOf(values, value)
	if idx < 0 {
		return
	}

	if len(values) == 1 {
		l.dropKey(key)
	} else {
		l.lens[key] = append(values[:idx:idx], values[idx+1:]...)
	}

	for i, pair := range l.list {
		if pair.Key == key && pair.Value == value {
			l.list = append(l.list[:i:i], l.list[i+1:]...)
			break
		}
	}
}

// DeleteAll removes every value stored under key together with the key.
func (l *List[T]) DeleteAll(key string) {
	if _, ok := l.lens[key]; !ok {
		return
	}

	next := make([]Pair[T], 0, len(l.list))
	for _, pair := range l.list {
		if pair.Key != key {
			next = append(next, pair)
		}
	}

	l.list = next
	l.dropKey(key)
}

// Clear empties the list.
func (l *List[T]) Clear() {
	if len(l.list) == 0 {
		return
	}

	l.list = make([]Pair[T], 0)
	l.lens = make(map[string][]T)
	l.keys = nil
}

// Len returns the total number of values across all keys.
func (l *List[T]) Len() int {
	return len(l.list)
}

func (l *List[T]) openLens(key string) {
	if _, ok := l.lens[key]; ok {
		return
	}
	l.lens[key] = make([]T, 0, 1)
	l.keys = append(l.keys, key)
}

func (l *List[T]) dropKey(key string) {
	delete(l.lens, key)
	for i, k := range l.keys {
		if k == key {
			l.keys = append(l.keys[:i:i], l.keys[i+1:]...)
			return
		}
	}
}

func indexOf[T comparable](values []T, value T) int {
	for i, v := range values {
		if v == value {
			return i
		}
	}
	return -1
}
