package dto

// HeartbeatRequest is sent by every open storefront tab.
type HeartbeatRequest struct {
	SessionID string `json:"sessionId"`
}

// PresenceResponse carries the online visitor count.
type PresenceResponse struct {
	Count int `json:"count"`
}
