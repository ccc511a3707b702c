package events

// RoomRequest is the body of every join-*/leave-* request.
type RoomRequest struct {
	ID string `json:"id"`
}

type SendMessageRequest struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

// TypingRequest targets the conversation partner.
type TypingRequest struct {
	RecipientID string `json:"recipientId"`
}

type ContentEditRequest struct {
	ContentID string `json:"contentId"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type MarkReadRequest struct {
	NotificationID string `json:"notificationId"`
}
