package models

import "time"

// TutorMessage is one turn of the tutor conversation, persisted for context.
type TutorMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	TopicID   *int      `json:"topic_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type TutorChatRequest struct {
	Message string `json:"message"`
	TopicID int    `json:"topic_id,omitempty"`
}

type TutorChatResponse struct {
	Reply string `json:"reply"`
}

type TutorLessonRequest struct {
	TopicID int `json:"topic_id"`
}
