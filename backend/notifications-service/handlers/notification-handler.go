package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"orbitplan/backend/notifications-service/models"
	"orbitplan/backend/notifications-service/services"
	"orbitplan/backend/utils"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type notificationResponse struct {
	Status       bool                 `json:"status"`
	Notification *models.Notification `json:"notification"`
}

type notificationsResponse struct {
	Status        bool                  `json:"status"`
	Notifications []models.Notification `json:"notifications"`
}

type markReadResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// CreateNotification is called by the tasks service; the gateway does not
// route it.
func (nh *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req models.NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.NewValidationError("Invalid request payload"))
		return
	}

	n, err := nh.service.Notify(r.Context(), req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, notificationResponse{Status: true, Notification: n})
}

func (nh *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	unreadOnly := false
	if raw := r.URL.Query().Get("unread"); raw != "" {
		if unreadOnly, err = strconv.ParseBool(raw); err != nil {
			utils.WriteError(w, utils.NewValidationError("Invalid unread value"))
			return
		}
	}

	list, err := nh.service.List(r.Context(), caller, unreadOnly)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, notificationsResponse{Status: true, Notifications: list})
}

func (nh *NotificationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	caller, err := utils.CallerFromRequest(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	query := r.URL.Query()

	n, err := nh.service.MarkRead(r.Context(), caller, query.Get("isReadType"), query.Get("id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, markReadResponse{Status: true, Message: "Done", Count: n})
}

func (nh *NotificationHandler) Routes(r *mux.Router) {
	r.HandleFunc("/api/notifications/add", nh.CreateNotification).Methods(http.MethodPost)
	r.HandleFunc("/api/notifications", nh.GetNotifications).Methods(http.MethodGet)
	r.HandleFunc("/api/notifications/read", nh.MarkNotificationRead).Methods(http.MethodPut)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteMessage(w, "Notifications service is running")
	}).Methods(http.MethodGet)
}
