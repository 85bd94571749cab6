package dto

type StatusResponse struct {
	UserID               int64 `json:"user_id"`
	Connected            bool  `json:"connected"`
	UnreadTotal          int   `json:"unread_total"`
	ActiveConversationID int64 `json:"active_conversation_id"`
	PendingToasts        int   `json:"pending_toasts"`
}

type ActiveConversationRequest struct {
	ConversationID int64 `json:"conversation_id"`
}

type ParticipantNameRequest struct {
	Name string `json:"name"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StatusMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
