package models

import "time"

// SortField - поле сортировки каталога.
type SortField string

const (
	SortByName  SortField = "name"
	SortByPrice SortField = "price"
)

// SortDirection - направление сортировки.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// CatalogQuery - параметры просмотра каталога.
type CatalogQuery struct {
	Category Category
	Sort     SortField
	Dir      SortDirection
	Page     int
	PerPage  int
	Range    DateRange
	Refresh  bool
}

// CatalogPage - страница каталога.
// VisiblePages содержит номера страниц для навигации, 0 обозначает пропуск («…»).
type CatalogPage struct {
	Cars         []Car     `json:"cars"`
	Total        int       `json:"total"`
	Page         int       `json:"page"`
	PerPage      int       `json:"perPage"`
	TotalPages   int       `json:"totalPages"`
	VisiblePages []int     `json:"visiblePages"`
	FetchedAt    time.Time `json:"fetchedAt"`
}
