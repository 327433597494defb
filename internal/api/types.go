package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp accepts the backend's datetime encodings, with or without a
// zone offset.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// User is the account returned by /auth/me.
type User struct {
	ID         int        `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Username   string     `json:"username"`
	Role       string     `json:"role"`
	IsActive   bool       `json:"is_active"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  Timestamp  `json:"created_at"`
	UpdatedAt  Timestamp  `json:"updated_at"`
	LastLogin  *Timestamp `json:"last_login,omitempty"`
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserUpdate changes profile fields; nil fields are left alone.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Username *string `json:"username,omitempty"`
}

// Session is the result of a successful login.
type Session struct {
	Tokens Tokens
	User   *User
}

// Level names used by the gamification profile.
const (
	LevelIniciante       = "iniciante"
	LevelExplorador      = "explorador"
	LevelEspecialista    = "especialista"
	LevelMestre          = "mestre"
	LevelQuantumGuardian = "quantum_guardian"
)

// ActivityType classifies XP-earning activities.
type ActivityType string

const (
	ActivityLogin              ActivityType = "login"
	ActivityTrilhaCompletion   ActivityType = "trilha_completion"
	ActivityProjetoSubmission  ActivityType = "projeto_submission"
	ActivityQMentorInteraction ActivityType = "qmentor_interaction"
	ActivityPomodoroSession    ActivityType = "pomodoro_session"
	ActivityStreakAchievement  ActivityType = "streak_achievement"
	ActivityLevelUp            ActivityType = "level_up"
)

// ActivityTypes lists every ActivityType.
var ActivityTypes = []ActivityType{
	ActivityLogin, ActivityTrilhaCompletion, ActivityProjetoSubmission,
	ActivityQMentorInteraction, ActivityPomodoroSession,
	ActivityStreakAchievement, ActivityLevelUp,
}

// GamificationProfile holds XP, level and streak counters.
type GamificationProfile struct {
	ID                int        `json:"id"`
	UserID            int        `json:"user_id"`
	TotalXP           int        `json:"total_xp"`
	CurrentLevel      string     `json:"current_level"`
	CurrentStreak     int        `json:"current_streak"`
	LongestStreak     int        `json:"longest_streak"`
	CompletedTrilhas  int        `json:"completed_trilhas"`
	CompletedProjects int        `json:"completed_projects"`
	PomodoroSessions  int        `json:"pomodoro_sessions"`
	LastActivityDate  *Timestamp `json:"last_activity_date,omitempty"`
	CreatedAt         Timestamp  `json:"created_at"`
	UpdatedAt         Timestamp  `json:"updated_at"`
}

// Task is a study task on the dashboard.
type Task struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Title     string    `json:"title"`
	DueDate   *string   `json:"due_date"`
	Completed bool      `json:"completed"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// TaskPayload is a task as submitted in a bulk sync.
type TaskPayload struct {
	Title     string  `json:"title"`
	DueDate   *string `json:"due_date"`
	Completed bool    `json:"completed"`
}

// Reward is a self-set reward unlocked by a condition.
type Reward struct {
	ID         int        `json:"id"`
	UserID     int        `json:"user_id"`
	Condition  string     `json:"condition"`
	Reward     string     `json:"reward"`
	Achieved   bool       `json:"achieved"`
	AchievedAt *Timestamp `json:"achieved_at,omitempty"`
	CreatedAt  Timestamp  `json:"created_at"`
	UpdatedAt  Timestamp  `json:"updated_at"`
}

// RewardUpdate changes reward fields; nil fields are left alone.
type RewardUpdate struct {
	Condition *string `json:"condition,omitempty"`
	Reward    *string `json:"reward,omitempty"`
	Achieved  *bool   `json:"achieved,omitempty"`
}

// Lesson is a single lesson with the user's completion flag.
type Lesson struct {
	ID        int    `json:"id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	Completed bool   `json:"completed"`
}

// Module groups lessons inside a track.
type Module struct {
	ID          int      `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Order       int      `json:"order"`
	Progress    float64  `json:"progress"`
	Lessons     []Lesson `json:"lessons"`
}

// Track is a learning track ("trilha").
type Track struct {
	ID          int      `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Color       string   `json:"color"`
	Progress    float64  `json:"progress"`
	Modules     []Module `json:"modules"`
}

// TrackSummary is the dashboard's per-track progress line.
type TrackSummary struct {
	TrackID  int     `json:"track_id"`
	Slug     string  `json:"slug"`
	Name     string  `json:"name"`
	Color    string  `json:"color"`
	Progress float64 `json:"progress"`
}

// WeekDay is one day of study hours.
type WeekDay struct {
	Day   string  `json:"day"`
	Hours float64 `json:"hours"`
}

// WeekProgress summarises the current week.
type WeekProgress struct {
	Streak     int       `json:"streak"`
	TotalHours float64   `json:"total_hours"`
	Week       []WeekDay `json:"week"`
}

// Dashboard is the aggregated dashboard payload.
type Dashboard struct {
	Tasks        []Task         `json:"tasks"`
	WeekProgress WeekProgress   `json:"week_progress"`
	TrackSummary []TrackSummary `json:"track_summary"`
}

// Achievement is a badge computed by the backend.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

// ProfileStats are the profile page counters.
type ProfileStats struct {
	TotalXP          int     `json:"total_xp"`
	CurrentLevel     string  `json:"current_level"`
	TotalHours       float64 `json:"total_hours"`
	CompletedLessons int     `json:"completed_lessons"`
	TotalLessons     int     `json:"total_lessons"`
	PomodoroSessions int     `json:"pomodoro_sessions"`
}

// ProfileDetails is the aggregated profile payload.
type ProfileDetails struct {
	Profile      GamificationProfile `json:"profile"`
	Achievements []Achievement       `json:"achievements"`
	Rewards      []Reward            `json:"rewards"`
	Stats        ProfileStats        `json:"stats"`
	WeekProgress WeekProgress        `json:"week_progress"`
	Tracks       []Track             `json:"tracks"`
}

// ActivityLog is one XP-earning event.
type ActivityLog struct {
	ID           int          `json:"id"`
	UserID       int          `json:"user_id"`
	ActivityType ActivityType `json:"activity_type"`
	Description  string       `json:"description"`
	XPEarned     int          `json:"xp_earned"`
	Metadata     *string      `json:"activity_metadata,omitempty"`
	CreatedAt    Timestamp    `json:"created_at"`
}

// LeaderboardEntry is one row of the XP leaderboard.
type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	Username         string `json:"username"`
	TotalXP          int    `json:"total_xp"`
	Level            string `json:"level"`
	CompletedTrilhas int    `json:"completed_trilhas"`
}

// ProjectType is the kind of submission in the project hub.
type ProjectType string

const (
	ProjectResearch ProjectType = "research"
	ProjectStartup  ProjectType = "startup"
)

// ProjectStatus is the review state of a submission.
type ProjectStatus string

const (
	ProjectDraft       ProjectStatus = "draft"
	ProjectSubmitted   ProjectStatus = "submitted"
	ProjectUnderReview ProjectStatus = "under_review"
	ProjectApproved    ProjectStatus = "approved"
	ProjectRejected    ProjectStatus = "rejected"
)

// Project is a project hub submission.
type Project struct {
	ID               int           `json:"id"`
	UserID           int           `json:"user_id"`
	ProjectType      ProjectType   `json:"project_type"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	GithubURL        *string       `json:"github_url"`
	DemoURL          *string       `json:"demo_url"`
	Status           ProjectStatus `json:"status"`
	SubmissionNotes  *string       `json:"submission_notes"`
	ReviewerFeedback *string       `json:"reviewer_feedback"`
	ReviewedAt       *Timestamp    `json:"reviewed_at,omitempty"`
	CreatedAt        Timestamp     `json:"created_at"`
	UpdatedAt        Timestamp     `json:"updated_at"`
}

// ProjectInput is the payload for a new submission.
type ProjectInput struct {
	ProjectType     ProjectType `json:"project_type"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	GithubURL       *string     `json:"github_url,omitempty"`
	DemoURL         *string     `json:"demo_url,omitempty"`
	SubmissionNotes *string     `json:"submission_notes,omitempty"`
}

// ProjectUpdate changes submission fields; nil fields are left alone.
type ProjectUpdate struct {
	Title           *string        `json:"title,omitempty"`
	Description     *string        `json:"description,omitempty"`
	GithubURL       *string        `json:"github_url,omitempty"`
	DemoURL         *string        `json:"demo_url,omitempty"`
	Status          *ProjectStatus `json:"status,omitempty"`
	SubmissionNotes *string        `json:"submission_notes,omitempty"`
}

// Health is the backend liveness payload.
type Health struct {
	Status      string  `json:"status"`
	Environment string  `json:"environment"`
	Timestamp   float64 `json:"timestamp"`
}

// ServerInfo is the backend root payload.
type ServerInfo struct {
	Message string `json:"message"`
	Version string `json:"version"`
	DocsURL string `json:"docs_url"`
}

// Message is a generic {"message": ...} reply.
type Message struct {
	Message string `json:"message"`
}
