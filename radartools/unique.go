package radartools

// Unique drops repeated values, keeping the first occurrence of each.
func Unique[T comparable](input []T) []T {
	seen := map[T]bool{}
	result := []T{}
	for _, i := range input {
		if seen[i] {
			continue
		}

		seen[i] = true
		result = append(result, i)
	}

	return result
}
