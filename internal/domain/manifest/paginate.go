package manifest

// RowsPerPage is the fixed row count of one printed table page.
const RowsPerPage = 22

// Paginate splits rows into fixed-size pages. It yields
// ceil(len(rows)/perPage) pages with a short final page; concatenating the
// pages in order reconstructs the input. Page numbering is scoped to the
// section being paginated, never to the whole document.
func Paginate[T any](rows []T, perPage int) [][]T {
	if perPage <= 0 || len(rows) == 0 {
		return nil
	}

	pages := make([][]T, 0, (len(rows)+perPage-1)/perPage)
	for start := 0; start < len(rows); start += perPage {
		end := start + perPage
		if end > len(rows) {
			end = len(rows)
		}
		pages = append(pages, rows[start:end])
	}
	return pages
}
