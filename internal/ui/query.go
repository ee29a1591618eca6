package ui

import (
	"sort"
	"strings"

	"github.com/valter-silva-au/taskdesk/pkg/models"
)

// SortColumn is a sortable table column.
type SortColumn int

const (
	ColumnNone SortColumn = iota
	ColumnTitle
	ColumnComment
	ColumnStatus
)

func (c SortColumn) String() string {
	switch c {
	case ColumnTitle:
		return "Title"
	case ColumnComment:
		return "Comment"
	case ColumnStatus:
		return "Status"
	default:
		return ""
	}
}

// SortDirection is the order applied to the sort column.
type SortDirection int

const (
	Unsorted SortDirection = iota
	Ascending
	Descending
)

// SortState is the active column and direction.
type SortState struct {
	Column    SortColumn
	Direction SortDirection
}

// Toggle returns the state after the user selects col: a new column starts
// ascending, the same column cycles ascending, descending, unsorted.
func (s SortState) Toggle(col SortColumn) SortState {
	if s.Column != col || s.Direction == Unsorted {
		return SortState{Column: col, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortState{Column: col, Direction: Descending}
	}
	return SortState{}
}

// Active reports whether any sort applies.
func (s SortState) Active() bool {
	return s.Column != ColumnNone && s.Direction != Unsorted
}

// PageSizes are the choices offered by the page size changer.
var PageSizes = []int{10, 20, 50, 100}

// NextPageSize returns the size after cur in PageSizes, wrapping around.
// A size not in the list moves to the first choice.
func NextPageSize(cur int) int {
	for i, s := range PageSizes {
		if s == cur {
			return PageSizes[(i+1)%len(PageSizes)]
		}
	}
	return PageSizes[0]
}

// Matches reports whether task contains query (case-insensitive) in its
// title, description or status label. An empty query matches everything.
func Matches(task models.Task, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(task.Title), q) ||
		strings.Contains(strings.ToLower(task.Description), q) ||
		strings.Contains(strings.ToLower(task.StatusLabel()), q)
}

// Filter returns the tasks matching query, in their original order.
func Filter(tasks []models.Task, query string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, query) {
			out = append(out, t)
		}
	}
	return out
}

// Sort returns a sorted copy of tasks. The sort is stable, so equal keys
// keep their original order in both directions.
func Sort(tasks []models.Task, state SortState) []models.Task {
	out := append([]models.Task(nil), tasks...)
	if !state.Active() {
		return out
	}

	cmp := compareFunc(state.Column)
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if state.Direction == Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareFunc(col SortColumn) func(a, b models.Task) int {
	switch col {
	case ColumnTitle:
		return func(a, b models.Task) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case ColumnComment:
		return func(a, b models.Task) int {
			return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
		}
	case ColumnStatus:
		// Pending sorts before Completed.
		return func(a, b models.Task) int {
			switch {
			case a.Completed == b.Completed:
				return 0
			case a.Completed:
				return 1
			default:
				return -1
			}
		}
	default:
		return func(models.Task, models.Task) int { return 0 }
	}
}

// PageCount returns the number of pages needed for n items, at least 1.
func PageCount(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampPage keeps page (zero-based) within [0, PageCount(n, size)).
func ClampPage(page, n, size int) int {
	if page < 0 {
		return 0
	}
	if last := PageCount(n, size) - 1; page > last {
		return last
	}
	return page
}

// Paginate returns the slice of tasks on page (zero-based, clamped).
func Paginate(tasks []models.Task, page, size int) []models.Task {
	if size <= 0 {
		return tasks
	}
	page = ClampPage(page, len(tasks), size)
	start := page * size
	if start >= len(tasks) {
		return nil
	}
	end := start + size
	if end > len(tasks) {
		end = len(tasks)
	}
	return tasks[start:end]
}
