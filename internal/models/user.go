package models

import "time"

type User struct {
	ID                    int64      `json:"id"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	Password              string     `json:"-"`
	CurrentLevel          Level      `json:"current_level"`
	ExamDate              *time.Time `json:"exam_date,omitempty"`
	DailyGoalMinutes      int        `json:"daily_goal_minutes"`
	StreakCurrent         int        `json:"streak_current"`
	StreakLongest         int        `json:"streak_longest"`
	LastPracticeDate      *time.Time `json:"last_practice_date,omitempty"`
	HasCompletedPlacement bool       `json:"has_completed_placement"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UpdateProfileRequest struct {
	ExamDate         *string `json:"exam_date,omitempty"` // YYYY-MM-DD, empty string clears
	DailyGoalMinutes *int    `json:"daily_goal_minutes,omitempty"`
	CurrentLevel     *Level  `json:"current_level,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
