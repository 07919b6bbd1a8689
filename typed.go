package emitter

import "iter"

type typedListener[D, R any] struct {
	fn func(*Event, D) R
}

func (l *typedListener[D, R]) HandleEvent(event *Event) any {
	data, _ := event.Data().(D)
	return l.fn(event, data)
}

// Handle wraps fn into a Listener that receives the payload as D. A payload
// of another type is passed as the zero value of D.
func Handle[D, R any](fn func(event *Event, data D) R) Listener {
	return &typedListener[D, R]{fn: fn}
}

// First pulls results from seq until match accepts one. Listeners after the
// matching one are never invoked.
func First(seq iter.Seq[any], match func(any) bool) (any, bool) {
	for value := range seq {
		if match(value) {
			return value, true
		}
	}
	return nil, false
}

// Truthy reports whether v is neither nil, false, zero nor empty string.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	}
	return true
}
