package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"orbitplan/backend/tasks-service/models"
	"orbitplan/backend/tasks-service/services"
	"orbitplan/backend/utils"
	"orbitplan/backend/utils/logging"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type lifecycleResponse struct {
	Status      bool                `json:"status"`
	Message     string              `json:"message"`
	Task        *models.TaskView    `json:"task"`
	SideEffects []models.SideEffect `json:"sideEffects"`
}

type taskResponse struct {
	Status bool             `json:"status"`
	Task   *models.TaskView `json:"task"`
}

type tasksResponse struct {
	Status bool              `json:"status"`
	Tasks  []models.TaskView `json:"tasks"`
}

type dashboardResponse struct {
	Status bool `json:"status"`
	*models.DashboardSummary
}

type subTaskResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	SubTask *models.SubTask `json:"subTask"`
}

type activityResponse struct {
	Status   bool             `json:"status"`
	Message  string           `json:"message"`
	Activity *models.Activity `json:"activity"`
}

type countResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return utils.NewValidationError("Invalid request body")
	}
	return nil
}

func writeLifecycle(w http.ResponseWriter, status int, message string, res *models.LifecycleResult) {
	if res.Failed() {
		message += ", but some follow-up steps failed"
	}
	utils.WriteJSON(w, status, lifecycleResponse{
		Status:      true,
		Message:     message,
		Task:        res.Task,
		SideEffects: res.SideEffects,
	})
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req models.CreateTaskRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	res, err := h.service.CreateTask(r.Context(), caller, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeLifecycle(w, http.StatusCreated, "Task created successfully", res)
}

func (h *TaskHandler) DuplicateTask(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	res, err := h.service.Duplicate(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeLifecycle(w, http.StatusCreated, "Task duplicated successfully", res)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var patch models.TaskPatch
	if err := decode(r, &patch); err != nil {
		utils.WriteError(w, err)
		return
	}

	res, err := h.service.UpdateTask(r.Context(), caller, mux.Vars(r)["id"], patch)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeLifecycle(w, http.StatusOK, "Task updated successfully", res)
}

func (h *TaskHandler) ChangeStage(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var body struct {
		Stage string `json:"stage"`
	}
	if err := decode(r, &body); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.service.UpdateStage(r.Context(), caller, mux.Vars(r)["id"], body.Stage); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteMessage(w, "Task stage changed successfully")
}

func (h *TaskHandler) ChangeSubTaskStatus(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var body struct {
		Status *bool `json:"status"`
	}
	if err := decode(r, &body); err != nil {
		utils.WriteError(w, err)
		return
	}
	if body.Status == nil {
		utils.WriteError(w, utils.NewValidationError("Missing required fields"))
		return
	}

	vars := mux.Vars(r)
	if err := h.service.UpdateSubTaskStatus(r.Context(), caller, vars["taskId"], vars["subTaskId"], *body.Status); err != nil {
		utils.WriteError(w, err)
		return
	}
	message := "Subtask marked as incomplete"
	if *body.Status {
		message = "Subtask marked as completed"
	}
	utils.WriteMessage(w, message)
}

func (h *TaskHandler) CreateSubTask(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req models.SubTaskRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	sub, err := h.service.AddSubTask(r.Context(), caller, mux.Vars(r)["id"], req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, subTaskResponse{Status: true, Message: "Subtask added successfully", SubTask: sub})
}

func (h *TaskHandler) PostActivity(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	var req models.ActivityRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	activity, err := h.service.AppendActivity(r.Context(), caller, mux.Vars(r)["id"], req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, activityResponse{Status: true, Message: "Activity posted successfully", Activity: activity})
}

func (h *TaskHandler) TrashTask(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := h.service.Trash(r.Context(), caller, mux.Vars(r)["id"]); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteMessage(w, "Task trashed successfully")
}

// DeleteRestore dispatches on actionType. The bulk variants ignore the id.
func (h *TaskHandler) DeleteRestore(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	switch action := r.URL.Query().Get("actionType"); action {
	case "delete":
		err = h.service.Purge(ctx, caller, id)
		if err == nil {
			utils.WriteMessage(w, "Task deleted successfully")
		}
	case "restore":
		err = h.service.Restore(ctx, caller, id)
		if err == nil {
			utils.WriteMessage(w, "Task restored successfully")
		}
	case "deleteAll":
		var n int64
		if n, err = h.service.PurgeAllTrashed(ctx, caller); err == nil {
			utils.WriteJSON(w, http.StatusOK, countResponse{Status: true, Message: "Trashed tasks deleted successfully", Count: n})
		}
	case "restoreAll":
		var n int64
		if n, err = h.service.RestoreAllTrashed(ctx, caller); err == nil {
			utils.WriteJSON(w, http.StatusOK, countResponse{Status: true, Message: "Trashed tasks restored successfully", Count: n})
		}
	default:
		logging.Logger.Warnf("Event ID: INVALID_ACTION_TYPE, Description: Unknown actionType %q", action)
		err = utils.NewValidationError("Invalid action type")
	}

	if err != nil {
		utils.WriteError(w, err)
	}
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	query := r.URL.Query()

	trashed := false
	if raw := query.Get("isTrashed"); raw != "" {
		if trashed, err = strconv.ParseBool(raw); err != nil {
			utils.WriteError(w, utils.NewValidationError("Invalid isTrashed value"))
			return
		}
	}

	tasks, err := h.service.ListTasks(r.Context(), caller, trashed, query.Get("stage"), query.Get("search"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, tasksResponse{Status: true, Tasks: tasks})
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	task, err := h.service.GetTask(r.Context(), caller, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, taskResponse{Status: true, Task: task})
}

func (h *TaskHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	summary, err := h.service.Dashboard(r.Context(), caller)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, dashboardResponse{Status: true, DashboardSummary: summary})
}

// Routes registers the task endpoints. Literal paths are registered before
// the {id} patterns they would otherwise match.
func (h *TaskHandler) Routes(r *mux.Router) {
	r.HandleFunc("/api/tasks/create", h.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks/duplicate/{id}", h.DuplicateTask).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks/activity/{id}", h.PostActivity).Methods(http.MethodPost)

	r.HandleFunc("/api/tasks/dashboard", h.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks", h.GetTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/{id}", h.GetTask).Methods(http.MethodGet)

	r.HandleFunc("/api/tasks/create-subtask/{id}", h.CreateSubTask).Methods(http.MethodPut)
	r.HandleFunc("/api/tasks/update/{id}", h.UpdateTask).Methods(http.MethodPut)
	r.HandleFunc("/api/tasks/change-stage/{id}", h.ChangeStage).Methods(http.MethodPut)
	r.HandleFunc("/api/tasks/change-status/{taskId}/{subTaskId}", h.ChangeSubTaskStatus).Methods(http.MethodPut)
	r.HandleFunc("/api/tasks/{id}/trash", h.TrashTask).Methods(http.MethodPut)
	r.HandleFunc("/api/tasks/{id}", h.UpdateTask).Methods(http.MethodPut)

	r.HandleFunc("/api/tasks/{id}/delete-restore", h.DeleteRestore).Methods(http.MethodDelete)
}
