package paging

// MaxPageButtons is the widest the numbered window ever gets.
const MaxPageButtons = 5

// Footer is the view model of the pagination footer. Pages are 0-based
// indexes; the shell shows them 1-based.
type Footer struct {
	Visible       bool  `json:"visible"`
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int   `json:"totalElements"`
	PageSize      int   `json:"pageSize"`
	CurrentCount  int   `json:"currentCount"`
	From          int   `json:"from"`
	To            int   `json:"to"`
	Pages         []int `json:"pages"`
	HasPrev       bool  `json:"hasPrev"`
	HasNext       bool  `json:"hasNext"`
	PrevPage      int   `json:"prevPage"`
	NextPage      int   `json:"nextPage"`
}

// NewFooter builds the footer. currentCount < 0 means "derive it from the
// totals". The footer does not validate bounds; SetPage does.
func NewFooter(currentPage, totalPages, totalElements, pageSize, currentCount int) Footer {
	if totalPages <= 0 {
		return Footer{Pages: []int{}}
	}

	if currentCount < 0 {
		currentCount = min(pageSize, totalElements-currentPage*pageSize)
		if currentCount < 0 {
			currentCount = 0
		}
	}

	f := Footer{
		Visible:       true,
		CurrentPage:   currentPage,
		TotalPages:    totalPages,
		TotalElements: totalElements,
		PageSize:      pageSize,
		CurrentCount:  currentCount,
		Pages:         Window(currentPage, totalPages),
		HasPrev:       currentPage > 0,
		HasNext:       currentPage < totalPages-1,
		PrevPage:      currentPage - 1,
		NextPage:      currentPage + 1,
	}
	if currentCount > 0 {
		f.From = currentPage*pageSize + 1
		f.To = f.From + currentCount - 1
	}
	return f
}

// FooterFor builds the footer of a controller snapshot.
func FooterFor[T any](s State[T]) Footer {
	return NewFooter(s.PageIndex, s.TotalPages, s.TotalElements, s.PageSize, len(s.Items))
}

// Window returns at most MaxPageButtons consecutive page indexes around
// current, shifted left near the last page so no index repeats.
func Window(current, totalPages int) []int {
	if totalPages <= 0 {
		return []int{}
	}
	n := min(MaxPageButtons, totalPages)
	start := current - MaxPageButtons/2
	start = min(start, totalPages-n)
	start = max(start, 0)

	pages := make([]int, n)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}
