package backend

import "github.com/softmembers/soft-members/pkg/store"

// DefaultPageLimit is the page size used when a listing names none.
const DefaultPageLimit = 50

// Pagination describes a page of a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// page clamps the requested page and limit and returns the store page.
// The limit is capped at the configured maximum page size.
func (d *Backend) page(page, limit int) (int, int, store.Page) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if max := d.cfg.Memberships.PageLimit; max > 0 && limit > max {
		limit = max
	}
	return page, limit, store.Page{Limit: limit, Offset: (page - 1) * limit}
}

func newPagination(page, limit, total int) Pagination {
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}
}
