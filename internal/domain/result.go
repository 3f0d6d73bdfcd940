package domain

// ExecutionResult describes the outcome of a single ungraded Run
// against the judge service. Produced fresh on each run and replaced
// by the next; nothing here is persisted as session state.
type ExecutionResult struct {
	Success       bool   `json:"success"`
	Stdout        string `json:"stdout,omitempty"`
	Stderr        string `json:"stderr,omitempty"`
	CompileOutput string `json:"compile_output,omitempty"`
	Time          string `json:"time,omitempty"`   // seconds, as reported by the judge
	Memory        int64  `json:"memory,omitempty"` // kilobytes
	Message       string `json:"message,omitempty"`
}

// Ran reports whether the program actually executed. Time and memory
// are meaningful only in that case; a compile failure never ran.
func (r *ExecutionResult) Ran() bool {
	return r.CompileOutput == "" && (r.Time != "" || r.Memory > 0 || r.Success)
}

// SubmissionResult is the graded counterpart of ExecutionResult.
// AlreadyCompleted and CurrentAnswerIncorrect are orthogonal: the
// backend may report that the exercise was solved in the past while
// this particular submission is wrong.
type SubmissionResult struct {
	Success                bool   `json:"success"`
	Message                string `json:"message"`
	Feedback               string `json:"feedback,omitempty"`
	Hint                   string `json:"hint,omitempty"`
	AlreadyCompleted       bool   `json:"already_completed"`
	CurrentAnswerIncorrect bool   `json:"current_answer_incorrect"`
}

// ShouldAdvance reports whether this submission should trigger the
// progression call and the completion prompt. An already-completed
// exercise is never re-completed, regardless of the new answer.
func (r *SubmissionResult) ShouldAdvance() bool {
	return r.Success && !r.AlreadyCompleted
}
