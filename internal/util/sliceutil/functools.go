package sliceutil

// Map applies f to every item. The result is never nil.
func Map[T any, U any, F ~func(T) U](items []T, f F) []U {
	res := make([]U, len(items))
	for i, item := range items {
		res[i] = f(item)
	}
	return res
}

// FilterMap keeps the mapped values for which f reports true, in order.
func FilterMap[T any, U any, F ~func(T) (U, bool)](items []T, f F) []U {
	res := make([]U, 0, len(items))
	for _, item := range items {
		if mapped, ok := f(item); ok {
			res = append(res, mapped)
		}
	}
	return res
}
