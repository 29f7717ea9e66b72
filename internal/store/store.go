// Package store provides the therapy data storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/careloom/reminisce/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// PutPatientParams holds parameters for storing a patient profile.
type PutPatientParams struct {
	ID         string // optional; generated when empty
	Name       string
	BirthYear  int
	Background string
	Interests  []string
}

// PutMemoryParams holds parameters for storing a memory.
type PutMemoryParams struct {
	ID          string // optional; generated when empty
	PatientID   string
	Title       string
	Description string
	MediaURLs   []string
	Tags        []string
}

// ListMemoriesParams holds parameters for listing memories.
type ListMemoriesParams struct {
	PatientID string
	Tags      []string
	Limit     int
}

// SearchMemoriesParams holds parameters for searching memories.
type SearchMemoriesParams struct {
	PatientID string
	Query     string
	Limit     int
}

// Store defines the full storage surface.
type Store interface {
	// PutPatient stores a patient profile. Returns the created patient.
	PutPatient(ctx context.Context, p PutPatientParams) (*model.Patient, error)

	// GetPatientByID retrieves a patient profile.
	GetPatientByID(ctx context.Context, id string) (*model.Patient, error)

	// PutMemory stores a memory for a patient. Returns the created memory.
	PutMemory(ctx context.Context, p PutMemoryParams) (*model.Memory, error)

	// GetMemoryByID retrieves a memory.
	GetMemoryByID(ctx context.Context, id string) (*model.Memory, error)

	// ListMemories lists memories matching the given filters, newest first.
	ListMemories(ctx context.Context, p ListMemoriesParams) ([]model.Memory, error)

	// SearchMemories finds memories whose title, description or tags match
	// the query substring.
	SearchMemories(ctx context.Context, p SearchMemoriesParams) ([]model.Memory, error)

	// SaveTherapyOutline persists a generated outline and returns its id.
	SaveTherapyOutline(ctx context.Context, outline *model.TherapyOutline) (string, error)

	// GetTherapyOutlineByMemoryID returns the most recently saved outline
	// for a memory.
	GetTherapyOutlineByMemoryID(ctx context.Context, memoryID string) (*model.TherapyOutline, error)

	// Close closes the store.
	Close() error
}
