package workspace

import "time"

// Workspace groups a user's datasets and generated insight snapshots.
// Workspace is the single source of truth: datasets and snapshots live in
// workspace-scoped storage and die with it.
type Workspace struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
