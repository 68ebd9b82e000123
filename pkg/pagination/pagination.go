package pagination

// Page describes a window over an ordered result set plus the navigation
// offsets needed to build previous/next controls.
type Page struct {
	// Start and End are the slice bounds [Start, End) within the result set.
	Start int
	End   int

	// Number is the 1-based page number for display.
	Number int

	// TotalPages is never zero, even for an empty result set.
	TotalPages int

	// HasPrev/HasNext report whether the corresponding control should be
	// rendered; PrevOffset/NextOffset are only meaningful when they are true.
	HasPrev    bool
	PrevOffset int
	HasNext    bool
	NextOffset int
}

// Compute derives a page window from a total count, a fixed page size and a
// zero-based offset. Out-of-range offsets degrade to an empty page rather
// than erroring, so stale pagination buttons stay safe to click.
func Compute(total, pageSize, offset int) Page {
	if pageSize <= 0 {
		pageSize = 1
	}
	if offset < 0 {
		offset = 0
	}

	p := Page{
		Start:      offset,
		End:        offset + pageSize,
		Number:     offset/pageSize + 1,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	if p.Start > total {
		p.Start = total
	}
	if p.End > total {
		p.End = total
	}

	if offset > 0 {
		p.HasPrev = true
		p.PrevOffset = offset - pageSize
		if p.PrevOffset < 0 {
			p.PrevOffset = 0
		}
	}
	if offset+pageSize < total {
		p.HasNext = true
		p.NextOffset = offset + pageSize
	}

	return p
}
