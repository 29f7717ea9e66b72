package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/careloom/reminisce/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// newID mints ULIDs that sort in mint order even within the same
// millisecond, so the id column is a reliable recency tiebreak.
func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS patients (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		birth_year  INTEGER,
		background  TEXT,
		interests   TEXT,
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS memories (
		id          TEXT PRIMARY KEY,
		patient_id  TEXT NOT NULL REFERENCES patients(id),
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		media_urls  TEXT,
		tags        TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memories_patient ON memories(patient_id);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC);

	CREATE TABLE IF NOT EXISTS therapy_outlines (
		id          TEXT PRIMARY KEY,
		memory_id   TEXT NOT NULL REFERENCES memories(id),
		patient_id  TEXT NOT NULL REFERENCES patients(id),
		steps       TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_outlines_memory ON therapy_outlines(memory_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) PutPatient(ctx context.Context, p PutPatientParams) (*model.Patient, error) {
	now := time.Now().UTC()
	id := p.ID
	if id == "" {
		id = s.newID()
	}

	var interestsJSON *string
	if len(p.Interests) > 0 {
		b, _ := json.Marshal(p.Interests)
		v := string(b)
		interestsJSON = &v
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO patients (id, name, birth_year, background, interests, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, p.Name, p.BirthYear, p.Background, interestsJSON, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert patient: %w", err)
	}

	return &model.Patient{
		ID:         id,
		Name:       p.Name,
		BirthYear:  p.BirthYear,
		Background: p.Background,
		Interests:  p.Interests,
		CreatedAt:  now,
	}, nil
}

func (s *SQLiteStore) GetPatientByID(ctx context.Context, id string) (*model.Patient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, birth_year, background, interests, created_at
		 FROM patients WHERE id = ?`, id)

	var p model.Patient
	var birthYear sql.NullInt64
	var background, interestsJSON sql.NullString
	var createdAt string

	err := row.Scan(&p.ID, &p.Name, &birthYear, &background, &interestsJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if birthYear.Valid {
		p.BirthYear = int(birthYear.Int64)
	}
	if background.Valid {
		p.Background = background.String
	}
	if interestsJSON.Valid {
		json.Unmarshal([]byte(interestsJSON.String), &p.Interests)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &p, nil
}

func (s *SQLiteStore) PutMemory(ctx context.Context, p PutMemoryParams) (*model.Memory, error) {
	now := time.Now().UTC()
	id := p.ID
	if id == "" {
		id = s.newID()
	}

	var mediaJSON, tagsJSON *string
	if len(p.MediaURLs) > 0 {
		b, _ := json.Marshal(p.MediaURLs)
		v := string(b)
		mediaJSON = &v
	}
	if len(p.Tags) > 0 {
		b, _ := json.Marshal(p.Tags)
		v := string(b)
		tagsJSON = &v
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (id, patient_id, title, description, media_urls, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, p.PatientID, p.Title, p.Description, mediaJSON, tagsJSON, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}

	return &model.Memory{
		ID:          id,
		PatientID:   p.PatientID,
		Title:       p.Title,
		Description: p.Description,
		MediaURLs:   p.MediaURLs,
		Tags:        p.Tags,
		CreatedAt:   now,
	}, nil
}

func (s *SQLiteStore) GetMemoryByID(ctx context.Context, id string) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, patient_id, title, description, media_urls, tags, created_at
		 FROM memories WHERE id = ?`, id)

	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("memory %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *SQLiteStore) ListMemories(ctx context.Context, p ListMemoriesParams) ([]model.Memory, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, patient_id, title, description, media_urls, tags, created_at
			  FROM memories`
	var args []interface{}

	where := ""
	if p.PatientID != "" {
		where = " WHERE patient_id = ?"
		args = append(args, p.PatientID)
	}
	for _, tag := range p.Tags {
		if where == "" {
			where = " WHERE tags LIKE ?"
		} else {
			where += " AND tags LIKE ?"
		}
		args = append(args, "%\""+tag+"\"%")
	}

	query += where + " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, *m)
	}

	return memories, nil
}

func (s *SQLiteStore) SaveTherapyOutline(ctx context.Context, outline *model.TherapyOutline) (string, error) {
	now := time.Now().UTC()
	id := outline.ID
	if id == "" {
		id = s.newID()
	}

	stepsJSON, err := json.Marshal(outline.Steps)
	if err != nil {
		return "", fmt.Errorf("marshal steps: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO therapy_outlines (id, memory_id, patient_id, steps, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, outline.MemoryID, outline.PatientID, string(stepsJSON), now.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert outline: %w", err)
	}

	outline.ID = id
	outline.CreatedAt = now
	return id, nil
}

func (s *SQLiteStore) GetTherapyOutlineByMemoryID(ctx context.Context, memoryID string) (*model.TherapyOutline, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, memory_id, patient_id, steps, created_at
		 FROM therapy_outlines WHERE memory_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`, memoryID)

	var o model.TherapyOutline
	var stepsJSON, createdAt string

	err := row.Scan(&o.ID, &o.MemoryID, &o.PatientID, &stepsJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("outline for memory %s: %w", memoryID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(stepsJSON), &o.Steps); err != nil {
		return nil, fmt.Errorf("unmarshal steps: %w", err)
	}
	o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &o, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row scanner) (*model.Memory, error) {
	var m model.Memory
	var mediaJSON, tagsJSON sql.NullString
	var createdAt string

	err := row.Scan(&m.ID, &m.PatientID, &m.Title, &m.Description, &mediaJSON, &tagsJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	if mediaJSON.Valid {
		json.Unmarshal([]byte(mediaJSON.String), &m.MediaURLs)
	}
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &m.Tags)
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &m, nil
}
