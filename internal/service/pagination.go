package service

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageRequest - запрошенная страница. Некорректные значения заменяются умолчаниями
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest нормализует page и limit
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset возвращает смещение первой записи страницы
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination описывает страницу в ответе
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPagination строит описание страницы; pages = ceil(total/limit)
func NewPagination(req PageRequest, total int64) Pagination {
	pages := 0
	if req.Limit > 0 {
		pages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}
	return Pagination{Page: req.Page, Limit: req.Limit, Total: total, Pages: pages}
}
