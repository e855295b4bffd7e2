// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with the generic
helpers the list pipelines lean on (Map, Filter, Index, Distinct).
*/
package slice

// Map maps a slice of type T to a slice of type U using the provided transformation function.
//
// A nil input yields an empty, non-nil slice so JSON encodes it as [].
func Map[T any, U any](input []T, transform func(T) U) []U {
	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}

// Filter returns the elements where the predicate evaluates to true, in input order.
func Filter[T any](input []T, predicate func(T) bool) []T {
	result := make([]T, 0, len(input))
	for _, v := range input {
		if predicate(v) {
			result = append(result, v)
		}
	}
	return result
}

// Index builds a lookup map keyed by key(v). Later duplicates win.
func Index[T any, K comparable](input []T, key func(T) K) map[K]T {
	result := make(map[K]T, len(input))
	for _, v := range input {
		result[key(v)] = v
	}
	return result
}

// Distinct returns the unique values in first-seen order, skipping those rejected by keep.
func Distinct[T comparable](input []T, keep func(T) bool) []T {
	seen := make(map[T]struct{}, len(input))
	result := make([]T, 0, len(input))
	for _, v := range input {
		if !keep(v) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
