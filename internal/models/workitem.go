package models

// Comment is a single entry of a work item's discussion thread.
type Comment struct {
	ID          int     `json:"id"`
	Text        string  `json:"text"`
	CreatedBy   *string `json:"created_by"`
	CreatedDate *string `json:"created_date"`
}

// WorkItem is the reshaped view of an Azure DevOps work item.
// Dates are passed through as the strings Azure DevOps returns.
type WorkItem struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	State         string    `json:"state"`
	Type          string    `json:"type"`
	AssignedTo    *string   `json:"assigned_to"`
	CreatedBy     *string   `json:"created_by"`
	CreatedDate   *string   `json:"created_date"`
	ChangedDate   *string   `json:"changed_date"`
	ChangedBy     *string   `json:"changed_by"`
	Description   string    `json:"description"`
	Tags          *string   `json:"tags"`
	IterationPath *string   `json:"iteration_path"`
	CommentsCount int       `json:"comments_count"`
	Comments      []Comment `json:"comments"` // nil when the item has no comments
	WebURL        string    `json:"web_url"`
}

// SprintWorkItems is the result envelope of a sprint work item query.
//
// CreatedByMe and AssignedToMe are part of the response schema but are never
// computed; they are always zero.
type SprintWorkItems struct {
	Sprint       string     `json:"sprint"`
	TotalCount   int        `json:"total_count"`
	CreatedByMe  int        `json:"created_by_me"`
	AssignedToMe int        `json:"assigned_to_me"`
	WorkItems    []WorkItem `json:"work_items"`
}

// SummaryItem is the minimal projection of a work item.
type SummaryItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Comments    []string `json:"comments,omitzero"` // present, possibly empty, when the item has comments
}

// Summary is the reduced envelope handed to downstream consumers such as LLMs.
type Summary struct {
	Sprint     string        `json:"sprint"`
	TotalCount int           `json:"total_count"`
	Items      []SummaryItem `json:"items"`
}
