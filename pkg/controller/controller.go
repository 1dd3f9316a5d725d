package controller

import (
	"context"
)

// Controller is an open session to a heating hub. Close must be called on
// every path once the session is no longer needed.
type Controller interface {
	UpdateWeekProfile(ctx context.Context, id, name string, profile []string) error

	Close() error
}
