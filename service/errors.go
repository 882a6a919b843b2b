package service

import (
	"errors"
	"fmt"
)

var (
	ErrTooManyPendingPlans = errors.New("too many pending plans")
	// ErrPlanQueueFull means two plans are already open; it matches ErrTooManyPendingPlans too
	ErrPlanQueueFull    = fmt.Errorf("plan queue is full: %w", ErrTooManyPendingPlans)
	ErrPlanNotFound     = errors.New("plan not found")
	ErrInvalidPlanInput = errors.New("total days and meals per day must be positive")
)
