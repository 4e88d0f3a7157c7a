package browser

import "encoding/json"

// Frame types exchanged with browser pages
const (
	FramePositionRequest   = "position_request"
	FramePosition          = "position"
	FramePermissionRequest = "permission_request"
	FramePermission        = "permission"
	FrameNotification      = "notification"
	FrameSessionEnded      = "session_ended"
)

// Permission kinds and states as reported by the browser Permissions API
const (
	PermissionGeolocation   = "geolocation"
	PermissionNotifications = "notifications"

	PermissionGranted = "granted"
	PermissionDenied  = "denied"
	PermissionPrompt  = "prompt"
)

// Frame is the envelope of every websocket message. Replies carry the id of the request they answer.
type Frame struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type PositionRequest struct {
	EnableHighAccuracy bool  `json:"enable_high_accuracy"`
	TimeoutMS          int64 `json:"timeout_ms"`
}

// PositionReply carries either coordinates or the browser's error message
type PositionReply struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type PermissionRequest struct {
	Kind string `json:"kind"`
}

type PermissionReply struct {
	Kind  string `json:"kind"`
	State string `json:"state"`
}

type NotificationFrame struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag,omitempty"`
}

func newFrame(frameType, id string, payload any) (Frame, error) {
	f := Frame{Type: frameType, ID: id}
	if payload == nil {
		return f, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	f.Data = data
	return f, nil
}
