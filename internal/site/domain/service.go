package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Site, error)
	GetByID(ctx context.Context, id int64) (*Site, error)
	GetByName(ctx context.Context, name string) (*Site, error)
	GetWithContracts(ctx context.Context, id int64) (*Site, error)
	List(ctx context.Context, filter ListFilter) ([]*Site, error)
	Update(ctx context.Context, req UpdateRequest) (*Site, error)
	Delete(ctx context.Context, id int64) error
}

type CreateRequest struct {
	Name      string   `json:"name"`
	Capacity  float64  `json:"capacity"`
	Techno    Techno   `json:"techno"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// UpdateRequest changes only the fields that are set. ClearCoordinates
// resets latitude and longitude to NULL and wins over new coordinates.
type UpdateRequest struct {
	ID               int64    `json:"id"`
	Capacity         *float64 `json:"capacity,omitempty"`
	Techno           *Techno  `json:"techno,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	ClearCoordinates bool     `json:"clear_coordinates,omitempty"`
}

// ListFilter narrows List. Family matches every techno of that energy source.
type ListFilter struct {
	Techno Techno `json:"techno,omitempty"`
	Family Family `json:"family,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidCapacity  = errors.New("invalid_capacity")
	ErrInvalidTechno    = errors.New("invalid_techno")
	ErrInvalidFamily    = errors.New("invalid_family")
	ErrInvalidLatitude  = errors.New("invalid_latitude")
	ErrInvalidLongitude = errors.New("invalid_longitude")
	ErrNotFound         = errors.New("not_found")
)
