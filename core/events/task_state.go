package events

const (
	// KindTaskPhaseChanged identifies a task lifecycle phase transition.
	KindTaskPhaseChanged Kind = "task_state.phase_changed"
	// KindTaskCompleted identifies successful task completion.
	KindTaskCompleted Kind = "task_state.completed"
	// KindTaskCancelled identifies task cancellation.
	KindTaskCancelled Kind = "task_state.cancelled"
	// KindTaskFailed identifies a task aborted on an error.
	KindTaskFailed Kind = "task_state.failed"
)

// TaskPhaseChanged marks a transition between task lifecycle phases. Phases
// are carried as strings so receivers can log or display them without
// importing the orchestration types.
type TaskPhaseChanged struct {
	Base
	From string
	To   string
}

// NewTaskPhaseChanged creates a phase transition event.
func NewTaskPhaseChanged(from, to string) TaskPhaseChanged {
	return TaskPhaseChanged{Base: NewBase(KindTaskPhaseChanged), From: from, To: to}
}

// TaskCompleted marks that the task ran to completion.
type TaskCompleted struct {
	Base
	TaskID string
}

// NewTaskCompleted creates a task completed event.
func NewTaskCompleted(taskID string) TaskCompleted {
	return TaskCompleted{Base: NewBase(KindTaskCompleted), TaskID: taskID}
}

// TaskCancelled marks that the task was cancelled before completion.
type TaskCancelled struct {
	Base
	TaskID string
}

// NewTaskCancelled creates a task cancelled event.
func NewTaskCancelled(taskID string) TaskCancelled {
	return TaskCancelled{Base: NewBase(KindTaskCancelled), TaskID: taskID}
}

// TaskFailed marks that the task aborted on an error.
type TaskFailed struct {
	Base
	TaskID string
	Err    error
}

// NewTaskFailed creates a task failed event.
func NewTaskFailed(taskID string, err error) TaskFailed {
	return TaskFailed{Base: NewBase(KindTaskFailed), TaskID: taskID, Err: err}
}
