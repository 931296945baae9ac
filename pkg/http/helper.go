package http

import (
	"math"
	"net/http"
	"strconv"

	apperrors "playverse/pkg/errors"
)

const InvalidPageMessage = "Invalid pagination parameters. Page and limit must be positive numbers"

// PageRequest is the optional page/limit pair of a list endpoint.
// Enabled is false when neither parameter was supplied.
type PageRequest struct {
	Enabled bool
	Page    int
	Limit   int
}

func (p PageRequest) Skip() int64 {
	if !p.Enabled {
		return 0
	}
	return int64(p.Page-1) * int64(p.Limit)
}

// ExtractPage reads page and limit from the query string. Both must be
// supplied together and both must be positive integers.
func ExtractPage(r *http.Request, maxLimit int) (PageRequest, error) {
	query := r.URL.Query()
	pageStr := query.Get("page")
	limitStr := query.Get("limit")

	if pageStr == "" && limitStr == "" {
		return PageRequest{}, nil
	}
	if pageStr == "" || limitStr == "" {
		return PageRequest{}, apperrors.InvalidInput(InvalidPageMessage)
	}

	page, err := strconv.Atoi(pageStr)
	if err != nil || page <= 0 {
		return PageRequest{}, apperrors.InvalidInput(InvalidPageMessage)
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return PageRequest{}, apperrors.InvalidInput(InvalidPageMessage)
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	// The skip offset must fit the int64 the driver sends.
	if int64(page-1) > math.MaxInt64/int64(limit) {
		return PageRequest{}, apperrors.InvalidInput(InvalidPageMessage)
	}

	return PageRequest{Enabled: true, Page: page, Limit: limit}, nil
}

func NewPagination(req PageRequest, total int64) *Pagination {
	if !req.Enabled {
		return nil
	}
	limit := int64(req.Limit)
	pages := int(total / limit)
	if total%limit != 0 {
		pages++
	}
	return &Pagination{
		CurrentPage: req.Page,
		TotalPages:  pages,
		Limit:       req.Limit,
		HasNextPage: req.Page < pages,
		HasPrevPage: req.Page > 1,
	}
}
