// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for paged list views.
//
// # Overview
//
// Lists in Anirate are assembled in memory, so pagination here is slice
// arithmetic: clamp the requested page, then cut the window out.
package pagination

// DefaultPage is the starting page (1-indexed).
const DefaultPage = 1

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta constructs pagination metadata for a response.
//
// The page is clamped into [1, max(TotalPages, 1)].
func NewMeta(page, limit, total int) Meta {
	totalPages := TotalPages(total, limit)
	return Meta{
		Page:       Clamp(page, totalPages),
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// TotalPages returns ceil(total / limit), or 0 when limit is not positive.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Clamp pins page into [1, max(totalPages, 1)].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Window returns the half-open [start, end) slice bounds of the given meta.
func (m Meta) Window() (start, end int) {
	start = (m.Page - 1) * m.Limit
	if start > m.Total {
		start = m.Total
	}
	end = start + m.Limit
	if end > m.Total {
		end = m.Total
	}
	return start, end
}
