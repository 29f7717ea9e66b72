// Package outline generates and retrieves reminiscence-therapy outlines.
package outline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/careloom/reminisce/internal/model"
	"github.com/careloom/reminisce/internal/store"
)

// ValidationError reports invalid input or a model reply that violates the
// outline contract. It is never retried; the cause surfaces to the caller.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// MemorySource resolves memories by id.
type MemorySource interface {
	GetMemoryByID(ctx context.Context, id string) (*model.Memory, error)
}

// PatientSource resolves patient profiles by id.
type PatientSource interface {
	GetPatientByID(ctx context.Context, id string) (*model.Patient, error)
}

// OutlineStore persists and retrieves generated outlines.
type OutlineStore interface {
	SaveTherapyOutline(ctx context.Context, outline *model.TherapyOutline) (string, error)
	GetTherapyOutlineByMemoryID(ctx context.Context, memoryID string) (*model.TherapyOutline, error)
}

// Options configures a Service.
type Options struct {
	// Temperature biases the model toward literal JSON output.
	Temperature float64

	// Timeout bounds a single generation call. Zero means no deadline.
	Timeout time.Duration

	// MaxPromptTokens rejects oversized prompts before the model call.
	// Zero disables the check.
	MaxPromptTokens int
}

// DefaultOptions returns the options used in production.
func DefaultOptions() Options {
	return Options{
		Temperature:     0.2,
		Timeout:         60 * time.Second,
		MaxPromptTokens: 8192,
	}
}

// Service generates therapy outlines from memories and persists them.
type Service struct {
	memories MemorySource
	patients PatientSource
	outlines OutlineStore
	llm      llms.Model
	opts     Options
}

// NewService wires the outline generator to its collaborators.
func NewService(memories MemorySource, patients PatientSource, outlines OutlineStore, llm llms.Model, opts Options) *Service {
	return &Service{
		memories: memories,
		patients: patients,
		outlines: outlines,
		llm:      llm,
		opts:     opts,
	}
}

// GetOutlineByMemoryID returns the most recently saved outline for a memory.
// Storage errors, including not-found, propagate unchanged.
func (s *Service) GetOutlineByMemoryID(ctx context.Context, memoryID string) (*model.TherapyOutline, error) {
	return s.outlines.GetTherapyOutlineByMemoryID(ctx, memoryID)
}

// GenerateAndSave resolves the memory and its patient, asks the model for an
// outline, validates the reply and persists it. Returns the new outline id.
func (s *Service) GenerateAndSave(ctx context.Context, memoryID string) (string, error) {
	if memoryID == "" {
		return "", &ValidationError{Msg: "memory id is required"}
	}

	log.Printf("generating therapy outline for memory %s", memoryID)

	// Memory presence is checked before any dependent lookup.
	mem, err := s.memories.GetMemoryByID(ctx, memoryID)
	if errors.Is(err, store.ErrNotFound) {
		return "", &ValidationError{Msg: fmt.Sprintf("no memory found with id %s", memoryID)}
	}
	if err != nil {
		return "", fmt.Errorf("resolve memory: %w", err)
	}

	patient, err := s.patients.GetPatientByID(ctx, mem.PatientID)
	if err != nil {
		return "", fmt.Errorf("resolve patient: %w", err)
	}

	prompt, err := BuildPrompt(memoryID, mem, patient)
	if err != nil {
		return "", err
	}

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	steps, err := parseSteps(raw)
	if err != nil {
		return "", err
	}

	outline := &model.TherapyOutline{
		PatientID: mem.PatientID,
		MemoryID:  memoryID,
		Steps:     steps,
	}

	log.Printf("saving therapy outline for memory %s (%d steps)", memoryID, len(steps))
	id, err := s.outlines.SaveTherapyOutline(ctx, outline)
	if err != nil {
		return "", fmt.Errorf("save outline: %w", err)
	}
	return id, nil
}

// generate performs a single best-effort model call and returns the first
// choice's text. No retries or backoff.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.opts.MaxPromptTokens > 0 {
		if n := promptTokens(prompt); n > s.opts.MaxPromptTokens {
			return "", &ValidationError{Msg: fmt.Sprintf("prompt size %d tokens exceeds limit %d", n, s.opts.MaxPromptTokens)}
		}
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	resp, err := s.llm.GenerateContent(ctx, messages, llms.WithTemperature(s.opts.Temperature))
	if err != nil {
		return "", fmt.Errorf("generate outline: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generate outline: model returned no choices")
	}

	return resp.Choices[0].Content, nil
}

// generatedOutline matches the JSON document the prompt instructs the model
// to emit.
type generatedOutline struct {
	PatientID string       `json:"patient_id"`
	MemoryID  string       `json:"memory_id"`
	Steps     []model.Step `json:"steps"`
}

// parseSteps decodes the raw model output and validates it against the
// outline contract. The model is free text; this is the one place its reply
// is held to a schema.
func parseSteps(raw string) ([]model.Step, error) {
	var doc generatedOutline
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &ValidationError{Msg: "invalid JSON output from model", Err: err}
	}

	if len(doc.Steps) == 0 {
		return nil, &ValidationError{Msg: "model output contains no steps"}
	}

	voice := doc.Steps[0].Script.Voice
	for i, step := range doc.Steps {
		if !model.ValidStepTypes[step.Type] {
			return nil, &ValidationError{Msg: fmt.Sprintf("step %d: unknown type %q", i+1, step.Type)}
		}
		if !model.ValidVoices[step.Script.Voice] {
			return nil, &ValidationError{Msg: fmt.Sprintf("step %d: unknown voice %q", i+1, step.Script.Voice)}
		}
		if step.Description == "" {
			return nil, &ValidationError{Msg: fmt.Sprintf("step %d: missing description", i+1)}
		}
		// The prompt asks for one consistent voice; drift is logged, not rejected.
		if step.Script.Voice != voice {
			log.Printf("outline voice drifts at step %d: %s != %s", i+1, step.Script.Voice, voice)
		}
	}

	return doc.Steps, nil
}

func promptTokens(text string) int {
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		log.Printf("error creating tiktoken encoder: %v", err)
		return 0
	}
	return len(encoder.Encode(text, nil, nil))
}
