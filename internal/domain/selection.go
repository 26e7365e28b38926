package domain

import (
	"fmt"
	"sort"
)

// Selection is one caller-supplied rectangle as it arrives on the wire.
// It carries the page it belongs to and is validated by NewSelectionMap.
type Selection struct {
	X              int `json:"x" yaml:"x"`
	Y              int `json:"y" yaml:"y"`
	Width          int `json:"width" yaml:"width"`
	Height         int `json:"height" yaml:"height"`
	PageNumber     int `json:"pageNumber" yaml:"pageNumber"`
	SequenceNumber int `json:"sequenceNumber" yaml:"sequenceNumber"`
}

// SelectionMap groups regions by zero-based page index.
// The order of regions within a page is not significant; sequence numbers
// define the reading order.
type SelectionMap map[int][]Region

// NewSelectionMap validates a selection list and groups it by page.
// The first invalid selection aborts the whole request.
func NewSelectionMap(selections []Selection) (SelectionMap, error) {
	m := make(SelectionMap)
	for i, s := range selections {
		if s.PageNumber < 0 {
			return nil, fmt.Errorf("%w: selection %d has negative page %d", ErrInvalidSelection, i, s.PageNumber)
		}
		r, err := NewRegion(s.X, s.Y, s.Width, s.Height, s.SequenceNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: selection %d: %w", ErrInvalidSelection, i, err)
		}
		m[s.PageNumber] = append(m[s.PageNumber], r)
	}
	return m, nil
}

// Len returns the total number of regions across all pages.
func (m SelectionMap) Len() int {
	n := 0
	for _, rs := range m {
		n += len(rs)
	}
	return n
}

// Pages returns the page indexes present in the map in ascending order.
func (m SelectionMap) Pages() []int {
	pages := make([]int, 0, len(m))
	for p := range m {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// PageRegion pairs a region with the page it was selected on.
type PageRegion struct {
	Page   int
	Region Region
}

// Ordered flattens the map into reading order: ascending sequence number.
// Equal sequence numbers keep a deterministic order (page ascending, then
// the order regions were listed for that page).
func (m SelectionMap) Ordered() []PageRegion {
	flat := make([]PageRegion, 0, m.Len())
	for _, p := range m.Pages() {
		for _, r := range m[p] {
			flat = append(flat, PageRegion{Page: p, Region: r})
		}
	}
	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].Region.SequenceNumber() < flat[j].Region.SequenceNumber()
	})
	return flat
}

// DuplicateSequences returns every sequence number used by more than one
// region, in ascending order.
func (m SelectionMap) DuplicateSequences() []int {
	seen := make(map[int]int, m.Len())
	for _, rs := range m {
		for _, r := range rs {
			seen[r.SequenceNumber()]++
		}
	}
	var dups []int
	for seq, n := range seen {
		if n > 1 {
			dups = append(dups, seq)
		}
	}
	sort.Ints(dups)
	return dups
}

// Run is a maximal contiguous stretch of the reading order that stays on
// one page. It is the unit of one extraction script invocation.
type Run struct {
	Page    int
	Regions []Region
}

// Runs partitions the reading order into runs. A page that is interleaved
// with other pages produces several runs; they are never merged.
func (m SelectionMap) Runs() []Run {
	var (
		runs    []Run
		current *Run
	)
	for _, pr := range m.Ordered() {
		if current != nil && current.Page == pr.Page {
			current.Regions = append(current.Regions, pr.Region)
			continue
		}
		if current != nil {
			runs = append(runs, *current)
		}
		current = &Run{Page: pr.Page, Regions: []Region{pr.Region}}
	}
	if current != nil {
		runs = append(runs, *current)
	}
	return runs
}
