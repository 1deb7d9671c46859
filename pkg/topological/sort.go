package topological

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"golang.org/x/exp/constraints"
)

var ErrCycleDetected = errors.New("cycle detected")

// CycleError lists the values that could not be ordered because they depend
// on each other, directly or through one another.
type CycleError[K constraints.Ordered] struct {
	Values []K
}

func (e *CycleError[K]) Error() string {
	return fmt.Sprintf("%v among %v", ErrCycleDetected, e.Values)
}

func (e *CycleError[K]) Unwrap() error {
	return ErrCycleDetected
}

func sortSlice[T constraints.Ordered](s []T) []T {
	slices.Sort(s)
	return s
}

// Sort orders values so each one comes after everything depFunc reports it
// depends on. Dependencies that are not among values are ignored. Ties are
// broken by the natural order of the values.
func Sort[T constraints.Ordered](values []T, depFunc func(T) []T) ([]T, error) {
	return SortFunc(values, func(val T) T { return val }, depFunc)
}

func SortFunc[T any, K constraints.Ordered](values []T, keyFunc func(T) K, depFunc func(T) []T) ([]T, error) {
	valuesByKey := make(map[K]T, len(values))
	for _, val := range values {
		valuesByKey[keyFunc(val)] = val
	}

	dependencies := make(map[K]map[K]struct{})
	dependents := make(map[K]map[K]struct{})
	for key, val := range valuesByKey {
		for _, dep := range depFunc(val) {
			depKey := keyFunc(dep)
			if _, ok := valuesByKey[depKey]; !ok {
				continue
			}
			if dependencies[key] == nil {
				dependencies[key] = make(map[K]struct{})
			}
			dependencies[key][depKey] = struct{}{}
			if dependents[depKey] == nil {
				dependents[depKey] = make(map[K]struct{})
			}
			dependents[depKey][key] = struct{}{}
		}
	}

	var ready []K
	for key := range valuesByKey {
		if len(dependencies[key]) == 0 {
			ready = append(ready, key)
		}
	}
	sortSlice(ready)

	list := make([]T, 0, len(valuesByKey))
	for len(ready) > 0 {
		var key K
		key, ready = ready[0], ready[1:]
		list = append(list, valuesByKey[key])

		var unblocked []K
		for _, dependent := range sortSlice(slices.Collect(maps.Keys(dependents[key]))) {
			delete(dependencies[dependent], key)
			if len(dependencies[dependent]) == 0 {
				delete(dependencies, dependent)
				unblocked = append(unblocked, dependent)
			}
		}
		ready = sortSlice(append(ready, unblocked...))
	}

	if len(dependencies) > 0 {
		return nil, &CycleError[K]{Values: sortSlice(slices.Collect(maps.Keys(dependencies)))}
	}

	return list, nil
}
