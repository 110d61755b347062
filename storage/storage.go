package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/townbeat/eventseries/series"
)

// ErrorType classifies storage failures so callers can react without
// matching on message strings.
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
)

// Error represents a storage-related error.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a storage not-found error.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Type == ErrNotFound
}

// Storage is the persistence collaborator the planner drives. The scheduling
// core classifies changes; implementations of this interface apply them.
// Please use the provided Error type so callers can classify failures.
type Storage interface {
	// GetSeries retrieves one series by id.
	GetSeries(ctx context.Context, seriesID string) (*series.Series, error)
	// CreateSeries persists a new series. Implementations assign the ID
	// when it is empty.
	CreateSeries(ctx context.Context, s *series.Series) error
	// UpdateSeries replaces a series' metadata.
	UpdateSeries(ctx context.Context, s *series.Series) error

	// ListInstances retrieves every materialized instance of a series,
	// including cancelled and override instances.
	ListInstances(ctx context.Context, seriesID string) ([]series.EventInstance, error)
	// CreateInstance persists a new instance. Implementations assign the
	// ID when it is empty.
	CreateInstance(ctx context.Context, inst *series.EventInstance) error
	// RetireInstance marks an instance cancelled. Retirement never deletes
	// rows; a retired instance stays visible as an exception date.
	RetireInstance(ctx context.Context, instanceID string) error
	// UpdateSequences writes recomputed session numbers back. Only the
	// SeriesSequence field may change.
	UpdateSequences(ctx context.Context, instances []series.EventInstance) error
}
