// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer provides generic helpers for optional (nullable) values.

Ratings are nullable end to end, so these helpers keep the nil checks in
one place.
*/
package pointer

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}

// Val safely dereferences a pointer, returning the zero value when it is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Clone returns a pointer to a copy of *p, or nil when p is nil.
func Clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Map converts the pointed-to value with fn, keeping nil as nil.
func Map[T, U any](p *T, fn func(T) U) *U {
	if p == nil {
		return nil
	}
	v := fn(*p)
	return &v
}
