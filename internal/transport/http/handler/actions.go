package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-push-registry/internal/application/device"
	"github.com/go-push-registry/internal/application/notification"
	"github.com/go-push-registry/internal/application/session"
	"github.com/go-push-registry/internal/domain"
)

// ActionsHandler is the query-parameter request boundary: one endpoint, an
// `action` selector and action-specific string parameters. Kept for clients of
// the original function-style API; the /v1 routes cover the same operations.
type ActionsHandler struct {
	devices       device.Service
	sessions      session.Service
	notifications notification.Service
}

func NewActionsHandler(devices device.Service, sessions session.Service, notifications notification.Service) *ActionsHandler {
	return &ActionsHandler{devices: devices, sessions: sessions, notifications: notifications}
}

const validActions = "'sendnotifications', 'registerdevice', 'login' or 'logout'"

// Dispatch routes on the `action` query parameter. All parameter validation
// lives in the services; this is thin dispatch only.
func (h *ActionsHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch strings.ToLower(q.Get("action")) {
	case "sendnotifications":
		report, err := h.notifications.Dispatch(r.Context(), q.Get("user"), q.Get("message"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)

	case "registerdevice":
		// An absent or unparseable `active` means false.
		active, _ := strconv.ParseBool(q.Get("active"))
		d, err := h.devices.Register(r.Context(), domain.RegisterDeviceRequest{
			User:       q.Get("user"),
			Token:      q.Get("fcmtoken"),
			Mail:       q.Get("mail"),
			Password:   q.Get("password"),
			DeviceType: q.Get("devicetype"),
			Active:     active,
		})
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, RegisteredEnvelope{
			Message: "device registered (or updated if it already existed)",
			User:    d.User,
			Token:   d.Token,
		})

	case "login":
		result, err := h.sessions.Login(r.Context(), session.LoginRequest{
			Username: q.Get("username"),
			Password: q.Get("password"),
			Token:    q.Get("fcmtoken"),
		})
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case "logout":
		result, err := h.sessions.Logout(r.Context(), q.Get("username"), q.Get("fcmtoken"))
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case "":
		writeError(w, http.StatusBadRequest, "the 'action' parameter is required: "+validActions)

	default:
		writeError(w, http.StatusBadRequest, "unknown action, use "+validActions)
	}
}
