package model

import (
	"time"

	"ripplix/internal/domain"
)

// Board is a user collection of library items. Only the shape the entitlement
// checks and the boards surface need; item rows stay in the repository.
type Board struct {
	ID        string
	UserID    string
	Name      string
	IsShared  bool
	CreatedAt time.Time
}

func NewBoard(id, userID, name string) (*Board, error) {
	if id == "" || userID == "" || name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Board{ID: id, UserID: userID, Name: name, CreatedAt: time.Now()}, nil
}
