package domain

import "context"

// DefaultBabyName is the name given to the profile created with every account.
const DefaultBabyName = "Baby"

// Baby is the profile events are attached to. Each caregiver owns exactly one.
type Baby struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
}

// BabyRepository is the port for baby profile persistence.
type BabyRepository interface {
	CreateBaby(ctx context.Context, userID int64, name string) (*Baby, error)
	GetBabyByUserID(ctx context.Context, userID int64) (*Baby, error)
}
