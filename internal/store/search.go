package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/careloom/reminisce/internal/model"
)

// SearchMemories finds memories whose title, description or tags match the
// query substring.
func (s *SQLiteStore) SearchMemories(ctx context.Context, p SearchMemoriesParams) ([]model.Memory, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + p.Query + "%"

	where := []string{"(title LIKE ? OR description LIKE ? OR tags LIKE ?)"}
	args := []interface{}{query, query, query}

	if p.PatientID != "" {
		where = append(where, "patient_id = ?")
		args = append(args, p.PatientID)
	}

	sqlQuery := fmt.Sprintf(`
		SELECT id, patient_id, title, description, media_urls, tags, created_at
		FROM memories
		WHERE %s
		ORDER BY created_at DESC
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *m)
	}

	return results, nil
}
