package model

// Task is a remote-owned task record. Completed reflects the state at fetch time.
type Task struct {
	ID        int64
	Title     string
	Completed bool
}

// IncompleteTasks returns the tasks whose completion flag is false, preserving
// the order in which the service returned them.
func IncompleteTasks(tasks []Task) []Task {
	incomplete := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			incomplete = append(incomplete, t)
		}
	}
	return incomplete
}
