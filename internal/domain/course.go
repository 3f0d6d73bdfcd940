package domain

// ContentType distinguishes the two kinds of course items.
type ContentType string

const (
	ContentVideo    ContentType = "video"
	ContentExercise ContentType = "exercise"
)

// Video represents a course video. Playback is handled elsewhere;
// the tracker only needs its identity for completion.
type Video struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Duration    int    `json:"duration,omitempty"` // seconds
}

// CourseItem is an ordered, typed node within a course. Exactly one of
// Exercise or Video is set, matching ContentType. Items are created and
// reordered only by administrative actions; learners read them.
type CourseItem struct {
	ID          int64       `json:"id"`
	CourseID    int64       `json:"course_id,omitempty"`
	Order       int         `json:"order"`
	ContentType ContentType `json:"content_type"`
	Required    bool        `json:"is_required"`
	Exercise    *Exercise   `json:"exercise,omitempty"`
	Video       *Video      `json:"video,omitempty"`
}

// Course is an ordered sequence of items plus the caller's progress.
type Course struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug,omitempty"`
	Description string       `json:"description"`
	Level       string       `json:"level,omitempty"`
	Items       []CourseItem `json:"items"`
	Progress    *Progress    `json:"user_progress,omitempty"`
}

// Progress is the per-learner, per-course state as reported by the
// backend. CompletionPercentage is display-only: the backend computes
// it and this side never recomputes it independently.
type Progress struct {
	Started              bool    `json:"is_started"`
	Completed            bool    `json:"is_completed"`
	CompletionPercentage float64 `json:"completion_percentage"`
	CurrentItemID        int64   `json:"current_item_id,omitempty"`
	CompletedItemIDs     []int64 `json:"completed_items_ids"`
}

// ItemCompleted reports whether the item is in the completed set.
// Membership is monotonic: once an id appears it never leaves.
func (p *Progress) ItemCompleted(itemID int64) bool {
	if p == nil {
		return false
	}
	for _, id := range p.CompletedItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// ItemByID returns the course item with the given id, or nil.
func (c *Course) ItemByID(id int64) *CourseItem {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}
