package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/y2k2/globa/internal/server/models"
)

type notificationDTO struct {
	NotificationID int64     `json:"notificationId"`
	Type           string    `json:"type"`
	FromUserID     int64     `json:"fromUserId"`
	ToUserID       int64     `json:"toUserId"`
	FolderID       *int64    `json:"folderId,omitempty"`
	RecordID       *int64    `json:"recordId,omitempty"`
	IsRead         bool      `json:"isRead"`
	CreatedTime    time.Time `json:"createdTime"`
}

type notificationsResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}

func toDTO(n models.Notification) notificationDTO {
	return notificationDTO{
		NotificationID: n.ID,
		Type:           n.Type.String(),
		FromUserID:     n.FromUserID,
		ToUserID:       n.ToUserID,
		FolderID:       n.FolderID,
		RecordID:       n.RecordID,
		IsRead:         n.IsRead,
		CreatedTime:    n.CreatedAt,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid access token")
		return
	}

	count, err := intParam(r, "count", 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, "count must be an integer")
		return
	}
	page, err := intParam(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}

	items, err := s.notifications.List(r.Context(), userID, count, page)
	if err != nil {
		s.logger.Error(r.Context(), "list notifications failed", "userId", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := notificationsResponse{Notifications: make([]notificationDTO, 0, len(items))}
	for _, n := range items {
		resp.Notifications = append(resp.Notifications, toDTO(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
