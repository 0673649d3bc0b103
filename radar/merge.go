package radar

import "reflect"

// mergeMaps deep merges source into target and returns target. Nested maps
// with string keys are merged key by key and stored as map[string]any,
// anything else in source overwrites what target has. Nothing in the result
// aliases source.
func mergeMaps(target map[string]any, source map[string]any) map[string]any {
	if target == nil {
		target = map[string]any{}
	}

	for key, sourceValue := range source {
		sourceMap, sourceIsMap := asStringMap(sourceValue)
		if !sourceIsMap {
			target[key] = cloneValue(sourceValue)
			continue
		}

		targetMap, _ := target[key].(map[string]any)
		target[key] = mergeMaps(targetMap, sourceMap)
	}

	return target
}

func cloneMap(source map[string]any) map[string]any {
	if source == nil {
		return nil
	}

	return mergeMaps(map[string]any{}, source)
}

// asStringMap views any map keyed by a string kind as a map[string]any.
func asStringMap(value any) (map[string]any, bool) {
	if typed, ok := value.(map[string]any); ok {
		return typed, true
	}

	reflected := reflect.ValueOf(value)
	if reflected.Kind() != reflect.Map || reflected.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	result := make(map[string]any, reflected.Len())
	for iter := reflected.MapRange(); iter.Next(); {
		result[iter.Key().String()] = iter.Value().Interface()
	}

	return result, true
}

// cloneValue copies maps, slices and arrays at any depth and keeps their
// types.
func cloneValue(value any) any {
	if value == nil {
		return nil
	}

	return cloneReflected(reflect.ValueOf(value)).Interface()
}

func cloneReflected(value reflect.Value) reflect.Value {
	switch value.Kind() {
	case reflect.Map:
		if value.IsNil() {
			return value
		}

		clone := reflect.MakeMapWithSize(value.Type(), value.Len())
		for iter := value.MapRange(); iter.Next(); {
			clone.SetMapIndex(iter.Key(), cloneReflected(iter.Value()))
		}

		return clone
	case reflect.Slice:
		if value.IsNil() {
			return value
		}

		clone := reflect.MakeSlice(value.Type(), value.Len(), value.Len())
		for i := range value.Len() {
			clone.Index(i).Set(cloneReflected(value.Index(i)))
		}

		return clone
	case reflect.Array:
		clone := reflect.New(value.Type()).Elem()
		for i := range value.Len() {
			clone.Index(i).Set(cloneReflected(value.Index(i)))
		}

		return clone
	case reflect.Interface:
		if value.IsNil() {
			return value
		}

		clone := reflect.New(value.Type()).Elem()
		clone.Set(cloneReflected(value.Elem()))

		return clone
	}

	return value
}
