// Package model defines the core reminiscence-therapy data types.
package model

import "time"

// Patient is a therapy patient profile. Read-only to the outline generator;
// JSON tags are the external field aliases used in prompt payloads.
type Patient struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	BirthYear  int       `json:"birth_year,omitempty"`
	Background string    `json:"background,omitempty"`
	Interests  []string  `json:"interests,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Memory is a patient's recorded reminiscence, the source material for a
// therapy outline.
type Memory struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MediaURLs   []string  `json:"media_urls,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Script is the narration for one step: text plus the voice that reads it.
type Script struct {
	Voice string `json:"voice"`
	Text  string `json:"text"`
}

// Step is one unit of a therapy session.
type Step struct {
	Step        int      `json:"step"`
	Description string   `json:"description"`
	Guide       []string `json:"guide"`
	Type        string   `json:"type"`
	MediaURLs   []string `json:"media_urls"`
	Script      Script   `json:"script"`
}

// TherapyOutline is an ordered sequence of therapy steps generated from a
// single memory. Created fresh on each generation; not mutated after save.
type TherapyOutline struct {
	ID        string    `json:"id,omitempty"`
	PatientID string    `json:"patient_id"`
	MemoryID  string    `json:"memory_id"`
	Steps     []Step    `json:"steps"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ValidStepTypes are the allowed step categories.
var ValidStepTypes = map[string]bool{
	"INTRODUCTION": true,
	"NORMAL":       true,
	"CONCLUSION":   true,
}

// ValidVoices are the allowed narration voices.
var ValidVoices = map[string]bool{
	"alloy":   true,
	"echo":    true,
	"fable":   true,
	"onyx":    true,
	"nova":    true,
	"shimmer": true,
}
