package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string         `json:"db_path"`
	DBSizeBytes int64          `json:"db_size_bytes"`
	Patients    int            `json:"patients"`
	Memories    int            `json:"memories"`
	Outlines    int            `json:"outlines"`
	PerPatient  []PatientStats `json:"per_patient,omitempty"`
}

// PatientStats holds per-patient record counts.
type PatientStats struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Memories  int    `json:"memories"`
	Outlines  int    `json:"outlines"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients`).Scan(&st.Patients)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&st.Memories)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM therapy_outlines`).Scan(&st.Outlines)

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name,
		       (SELECT COUNT(*) FROM memories m WHERE m.patient_id = p.id) AS mems,
		       (SELECT COUNT(*) FROM therapy_outlines o WHERE o.patient_id = p.id) AS outs
		FROM patients p ORDER BY mems DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ps PatientStats
		rows.Scan(&ps.PatientID, &ps.Name, &ps.Memories, &ps.Outlines)
		st.PerPatient = append(st.PerPatient, ps)
	}

	return st, nil
}
