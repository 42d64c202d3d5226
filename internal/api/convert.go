package api

// Convertible is implemented by wrapped domain types that have an API representation.
type Convertible[T any] interface {
	// ToAPIType converts the wrapped domain value, normalizing it for the API boundary.
	ToAPIType() (T, error)
}

// convertAll wraps each item and converts it, stopping at the first error.
// The result is never nil so empty collections serialize as [].
func convertAll[S any, T any](items []S, wrap func(S) Convertible[T]) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		v, err := wrap(item).ToAPIType()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
