package todo

import "iter"

// FilteredView yields the tasks matching mode in source order.
// The sequence reads tasks on every iteration, so it can be ranged over
// repeatedly.
func FilteredView(tasks []Task, mode FilterMode) iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, t := range tasks {
			if !mode.Matches(t) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// View returns FilteredView over the current snapshot.
func (s *Store) View(mode FilterMode) iter.Seq[Task] {
	return FilteredView(s.Tasks(), mode)
}

// Stats summarizes a collection.
type Stats struct {
	Total          int `json:"total"`
	Active         int `json:"active"`
	Completed      int `json:"completed"`
	CompletionRate int `json:"completion_rate"` // percent, 0-100
}

// ComputeStats counts tasks. CompletionRate is completed/total as a
// percentage rounded half up, and 0 for an empty collection.
func ComputeStats(tasks []Task) Stats {
	var st Stats
	st.Total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			st.Completed++
		}
	}
	st.Active = st.Total - st.Completed
	if st.Total > 0 {
		st.CompletionRate = (200*st.Completed + st.Total) / (2 * st.Total)
	}
	return st
}

// Stats returns ComputeStats over the current snapshot.
func (s *Store) Stats() Stats {
	return ComputeStats(s.tasks)
}
