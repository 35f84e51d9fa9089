package devops

// WorkItemReference is an id/url pair returned by a flat WIQL query.
type WorkItemReference struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

type WiqlRequest struct {
	Query string `json:"query"`
}

type WiqlResponse struct {
	QueryType       string              `json:"queryType"`
	QueryResultType string              `json:"queryResultType"`
	WorkItems       []WorkItemReference `json:"workItems"`
}

// WorkItem is a raw work item. Fields is keyed by reference name, e.g. "System.Title".
type WorkItem struct {
	ID     int            `json:"id"`
	Rev    int            `json:"rev"`
	Fields map[string]any `json:"fields"`
	URL    string         `json:"url"`
}

type WorkItemsResponse struct {
	Count int        `json:"count"`
	Value []WorkItem `json:"value"`
}

type IdentityRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

type Comment struct {
	ID          int          `json:"id"`
	WorkItemID  int          `json:"workItemId"`
	Text        string       `json:"text"`
	CreatedBy   *IdentityRef `json:"createdBy"`
	CreatedDate *string      `json:"createdDate"`
}

type CommentList struct {
	TotalCount int       `json:"totalCount"`
	Count      int       `json:"count"`
	Comments   []Comment `json:"comments"`
}

// IterationAttributes carries the schedule of a team iteration.
// TimeFrame is one of "past", "current" or "future".
type IterationAttributes struct {
	StartDate  *string `json:"startDate"`
	FinishDate *string `json:"finishDate"`
	TimeFrame  *string `json:"timeFrame"`
}

type Iteration struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Path       string              `json:"path"`
	Attributes IterationAttributes `json:"attributes"`
	URL        string              `json:"url"`
}

type IterationsResponse struct {
	Count int         `json:"count"`
	Value []Iteration `json:"value"`
}
