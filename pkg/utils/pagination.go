package utils

// NormalizePage clamps page to at least 1 and perPage into [1, max], using def when unset.
func NormalizePage(page, perPage, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case perPage < 1:
		perPage = def
	case perPage > max:
		perPage = max
	}
	return page, perPage
}

func CalculateOffset(page, perPage int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * perPage
}

func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
