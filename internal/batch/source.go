package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"jobforge/pkg/models"
)

// Source supplies the job records a batch run iterates over.
type Source interface {
	Jobs(ctx context.Context) ([]models.Job, error)
}

// CSVSource reads job records from a CSV export with a header row. Column
// names match the job record fields: JobTitle, Company, Location,
// JobDescription, MatchScore, Applied. Unknown columns are ignored.
type CSVSource struct {
	path string
}

// NewCSVSource creates a job source over a CSV file.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Jobs(_ context.Context) ([]models.Job, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open jobs file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse jobs file: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	jobs := make([]models.Job, 0, len(rows)-1)
	for _, row := range rows[1:] {
		score, _ := strconv.Atoi(field(row, "MatchScore"))
		applied := strings.EqualFold(field(row, "Applied"), "true") || field(row, "Applied") == "1"
		jobs = append(jobs, models.Job{
			JobTitle:       field(row, "JobTitle"),
			Company:        field(row, "Company"),
			Location:       field(row, "Location"),
			JobDescription: field(row, "JobDescription"),
			MatchScore:     score,
			Applied:        applied,
		})
	}
	return jobs, nil
}

// FindJob returns the first job whose company or title contains the query,
// case-insensitively. Used by the single-job command to pick a record out
// of the store without requiring exact names.
func FindJob(jobs []models.Job, query string) (models.Job, bool) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return models.Job{}, false
	}
	for _, job := range jobs {
		if strings.Contains(strings.ToLower(job.Company), needle) ||
			strings.Contains(strings.ToLower(job.JobTitle), needle) {
			return job, true
		}
	}
	return models.Job{}, false
}
