package radartools

func Map[T any, Y any](input []T, transform func(T) Y) []Y {
	result := []Y{}
	for _, i := range input {
		result = append(result, transform(i))
	}

	return result
}
