package calendar

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T
	Page     int // номер страницы (с 1)
	PageSize int
	HasNext  bool
	HasPrev  bool
	Total    int
}

// Normalize подставляет дефолты вместо некорректных page и pageSize.
func Normalize(page, pageSize int) (int, int) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageSize = min(pageSize, maxPageSize)
	if page <= 0 {
		page = 1
	}
	return page, pageSize
}

// Offset возвращает смещение для LIMIT/OFFSET запроса.
func Offset(page, pageSize int) int {
	page, pageSize = Normalize(page, pageSize)
	return (page - 1) * pageSize
}

// NewPage собирает страницу из уже выбранных в БД items и общего числа записей.
func NewPage[T any](items []T, page, pageSize, total int) Page[T] {
	page, pageSize = Normalize(page, pageSize)
	return Page[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		HasNext:  Offset(page, pageSize)+len(items) < total,
		HasPrev:  page > 1,
		Total:    total,
	}
}
