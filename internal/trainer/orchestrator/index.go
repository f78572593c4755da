package orchestrator

// taskIndex maps a task key to the id of its single active job.
// It is not safe for concurrent use; the orchestrator guards it.
type taskIndex struct {
	active map[string]string
}

func newTaskIndex() *taskIndex {
	return &taskIndex{active: make(map[string]string)}
}

func (x *taskIndex) lookup(taskKey string) (string, bool) {
	id, ok := x.active[taskKey]
	return id, ok
}

// claim records jobID as the active job for taskKey. It fails when another
// job already holds the key.
func (x *taskIndex) claim(taskKey, jobID string) bool {
	if _, taken := x.active[taskKey]; taken {
		return false
	}
	x.active[taskKey] = jobID
	return true
}

// release removes the entry only while it still points at jobID, so a late
// release never drops a newer job's claim.
func (x *taskIndex) release(taskKey, jobID string) bool {
	if x.active[taskKey] != jobID {
		return false
	}
	delete(x.active, taskKey)
	return true
}

func (x *taskIndex) len() int {
	return len(x.active)
}
