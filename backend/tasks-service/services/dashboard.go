package services

import (
	"sort"

	"orbitplan/backend/tasks-service/models"
)

const (
	dashboardRecentTasks = 10
	dashboardRecentUsers = 10
)

// Summarize derives the dashboard from tasks, which must already be limited
// to the caller's scope and exclude trashed tasks. users is only read when
// isAdmin is true. The result does not depend on the order of either input.
func Summarize(tasks []models.TaskView, users []models.User, isAdmin bool) models.DashboardSummary {
	ordered := make([]models.TaskView, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return newerTask(ordered[i].Task, ordered[j].Task)
	})

	byStage := make(map[models.Stage]int)
	byPriority := make(map[models.Priority]int)
	var priorityOrder []models.Priority
	for _, t := range ordered {
		byStage[t.Stage]++
		if _, seen := byPriority[t.Priority]; !seen {
			priorityOrder = append(priorityOrder, t.Priority)
		}
		byPriority[t.Priority]++
	}

	graph := make([]models.PriorityTotal, 0, len(priorityOrder))
	for _, p := range priorityOrder {
		graph = append(graph, models.PriorityTotal{Name: p, Total: byPriority[p]})
	}

	last := ordered
	if len(last) > dashboardRecentTasks {
		last = last[:dashboardRecentTasks]
	}

	return models.DashboardSummary{
		TotalTasks: len(ordered),
		Tasks:      byStage,
		GraphData:  graph,
		Last10Task: last,
		Users:      recentActiveUsers(users, isAdmin),
	}
}

func recentActiveUsers(users []models.User, isAdmin bool) []models.ActiveUser {
	result := []models.ActiveUser{}
	if !isAdmin {
		return result
	}

	active := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			active = append(active, u)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if !active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].CreatedAt.After(active[j].CreatedAt)
		}
		return active[i].ID > active[j].ID
	})
	if len(active) > dashboardRecentUsers {
		active = active[:dashboardRecentUsers]
	}

	for _, u := range active {
		result = append(result, models.ActiveUser{
			ID:        u.ID,
			Name:      u.Name,
			Title:     u.Title,
			Role:      u.Role,
			IsActive:  u.IsActive,
			CreatedAt: u.CreatedAt,
		})
	}
	return result
}

// newerTask orders by creation time, newest first, breaking ties on the id.
func newerTask(a, b models.Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}
