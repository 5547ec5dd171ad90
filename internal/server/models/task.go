package models

import "time"

// Task is a to-do item. UserID and CreatedAt are fixed at creation.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OwnedBy reports whether userID owns the task.
func (t *Task) OwnedBy(userID string) bool {
	return t.UserID == userID
}
