package view

// Page is one slice of a longer list. Number is 1-based.
type Page[T any] struct {
	Items   []T
	Number  int
	PerPage int
	Total   int
	Pages   int
}

// Paginate returns page number of items. Out-of-range numbers clamp to
// the first or last page.
func Paginate[T any](items []T, number, perPage int) Page[T] {
	if perPage < 1 {
		perPage = 10
	}
	total := len(items)
	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}

	start := (number - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	if start > total {
		start = total
	}
	return Page[T]{
		Items:   items[start:end:end],
		Number:  number,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
	}
}
