package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/b1prep/backend/internal/models"
)

// JWTSecret is the HMAC signing key for auth tokens.
// This is a server-side secret — it never leaves the backend.
var JWTSecret = []byte(jwtSecretFromEnv())

func jwtSecretFromEnv() string {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		return v
	}
	return "b1prep-staging-signing-key-2026"
}

const userCols = `id, email, name, current_level, exam_date, daily_goal_minutes,
	streak_current, streak_longest, last_practice_date, has_completed_placement,
	created_at, updated_at`

type Handler struct {
	db *sql.DB
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{db: db}
}

func scanUser(row interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.CurrentLevel,
		&user.ExamDate, &user.DailyGoalMinutes, &user.StreakCurrent,
		&user.StreakLongest, &user.LastPracticeDate, &user.HasCompletedPlacement,
		&user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || req.Name == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email, name, and password are required"})
		return
	}

	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Password must be at least 8 characters"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	row := h.db.QueryRow(
		`INSERT INTO users (email, name, password, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING `+userCols,
		req.Email, req.Name, string(hashedPassword), time.Now(),
	)

	user, err := scanUser(row)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "An account with this email already exists"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create account"})
		return
	}

	token, err := generateToken(user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: token, User: user})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email and password are required"})
		return
	}

	var hashedPassword string
	err := h.db.QueryRow(
		`SELECT password FROM users WHERE email = $1`,
		req.Email,
	).Scan(&hashedPassword)
	if err == sql.ErrNoRows {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password"})
		return
	}

	row := h.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = $1`, req.Email)
	user, err := scanUser(row)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	token, err := generateToken(user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: token, User: user})
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	row := h.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = $1`, userID)
	user, err := scanUser(row)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile changes exam date, daily goal and/or level. An empty
// exam_date string clears the date.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.ExamDate != nil {
		if *req.ExamDate == "" {
			if _, err := h.db.Exec(`UPDATE users SET exam_date = NULL, updated_at = NOW() WHERE id = $1`, userID); err != nil {
				writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update profile"})
				return
			}
		} else {
			examDate, err := time.Parse("2006-01-02", *req.ExamDate)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_date must be YYYY-MM-DD"})
				return
			}
			if _, err := h.db.Exec(`UPDATE users SET exam_date = $1, updated_at = NOW() WHERE id = $2`, examDate, userID); err != nil {
				writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update profile"})
				return
			}
		}
	}

	if req.DailyGoalMinutes != nil {
		if *req.DailyGoalMinutes < 5 || *req.DailyGoalMinutes > 120 {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "daily_goal_minutes must be between 5 and 120"})
			return
		}
		if _, err := h.db.Exec(`UPDATE users SET daily_goal_minutes = $1, updated_at = NOW() WHERE id = $2`, *req.DailyGoalMinutes, userID); err != nil {
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update profile"})
			return
		}
	}

	if req.CurrentLevel != nil {
		if !models.ValidLevels[*req.CurrentLevel] {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid level"})
			return
		}
		if _, err := h.db.Exec(`UPDATE users SET current_level = $1, updated_at = NOW() WHERE id = $2`, *req.CurrentLevel, userID); err != nil {
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update profile"})
			return
		}
	}

	row := h.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = $1`, userID)
	user, err := scanUser(row)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load profile"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func generateToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
