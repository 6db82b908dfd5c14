package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultPageLimit is the page size used when the caller does not send one.
	DefaultPageLimit = 16
	// DefaultMaxPageLimit caps caller supplied page sizes.
	DefaultMaxPageLimit = 100
)

// PageRequest is an offset based window over a result set. Limit is always positive.
type PageRequest struct {
	Limit  int
	Offset int
}

// PageLimits carries the defaults applied when parsing page parameters.
type PageLimits struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultPageLimits returns the stock pagination limits.
func DefaultPageLimits() PageLimits {
	return PageLimits{DefaultLimit: DefaultPageLimit, MaxLimit: DefaultMaxPageLimit}
}

func (l PageLimits) normalized() PageLimits {
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = DefaultPageLimit
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = DefaultMaxPageLimit
	}
	if l.DefaultLimit > l.MaxLimit {
		l.DefaultLimit = l.MaxLimit
	}
	return l
}

// NewPageRequest clamps limit and offset into a usable window.
func NewPageRequest(limit, offset int, limits PageLimits) PageRequest {
	limits = limits.normalized()
	if limit <= 0 {
		limit = limits.DefaultLimit
	}
	if limit > limits.MaxLimit {
		limit = limits.MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return PageRequest{Limit: limit, Offset: offset}
}

// ParsePageRequest builds a PageRequest from raw query values. Non-numeric or
// out of range values fall back to defaults instead of failing. page is only
// consulted when offset is absent.
func ParsePageRequest(limitRaw, offsetRaw, pageRaw string, limits PageLimits) PageRequest {
	limit := 0
	if parsed, err := strconv.Atoi(strings.TrimSpace(limitRaw)); err == nil {
		limit = parsed
	}
	req := NewPageRequest(limit, 0, limits)

	if raw := strings.TrimSpace(offsetRaw); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > math.MaxInt32 {
				parsed = math.MaxInt32
			}
			req.Offset = parsed
		}
		return req
	}

	if parsed, err := strconv.Atoi(strings.TrimSpace(pageRaw)); err == nil && parsed > 1 {
		maxPage := math.MaxInt32/req.Limit + 1
		if parsed > maxPage {
			parsed = maxPage
		}
		req.Offset = (parsed - 1) * req.Limit
	}
	return req
}

// Page returns the one-based page number containing Offset.
func (p PageRequest) Page() int {
	if p.Limit <= 0 {
		return 1
	}
	return p.Offset/p.Limit + 1
}

// PageResult is the envelope returned by filtered listings.
type PageResult struct {
	Rows       []Record `json:"rows"`
	TotalCount int64    `json:"totalCount"`
	Page       int      `json:"page"`
	TotalPages int64    `json:"totalPages"`
	HasMore    bool     `json:"hasMore"`
	Limit      int      `json:"limit"`
	Offset     int      `json:"offset"`
}

// NewPageResult derives the pagination metadata for rows fetched with req.
func NewPageResult(rows []Record, totalCount int64, req PageRequest) PageResult {
	if rows == nil {
		rows = []Record{}
	}
	if totalCount < 0 {
		totalCount = 0
	}
	limit := int64(req.Limit)
	var totalPages int64
	if limit > 0 {
		totalPages = (totalCount + limit - 1) / limit
	}
	return PageResult{
		Rows:       rows,
		TotalCount: totalCount,
		Page:       req.Page(),
		TotalPages: totalPages,
		HasMore:    int64(req.Offset) < totalCount-limit,
		Limit:      req.Limit,
		Offset:     req.Offset,
	}
}
