package models

// PriorityTotal is one point of the priority distribution series.
type PriorityTotal struct {
	Name  Priority `json:"name"`
	Total int      `json:"total"`
}

// DashboardSummary is derived from the live task set on every request.
// Stages with no tasks are absent from Tasks.
type DashboardSummary struct {
	TotalTasks int             `json:"totalTasks"`
	Tasks      map[Stage]int   `json:"tasks"`
	GraphData  []PriorityTotal `json:"graphData"`
	Last10Task []TaskView      `json:"last10Task"`
	Users      []ActiveUser    `json:"users"`
}
