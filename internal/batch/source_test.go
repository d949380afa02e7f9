package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobforge/pkg/models"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSource(t *testing.T) {
	t.Run("parses header-mapped rows", func(t *testing.T) {
		path := writeCSV(t, `JobTitle,Company,Location,JobDescription,MatchScore,Applied
Data Engineer,Acme Corp,"Seattle, WA",Build pipelines.,85,false
Analyst,Globex,Boston,Crunch numbers.,40,true
`)
		jobs, err := NewCSVSource(path).Jobs(context.Background())
		require.NoError(t, err)
		require.Len(t, jobs, 2)

		assert.Equal(t, models.Job{
			JobTitle:       "Data Engineer",
			Company:        "Acme Corp",
			Location:       "Seattle, WA",
			JobDescription: "Build pipelines.",
			MatchScore:     85,
		}, jobs[0])
		assert.True(t, jobs[1].Applied)
		assert.Equal(t, 40, jobs[1].MatchScore)
	})

	t.Run("column order does not matter and extras are ignored", func(t *testing.T) {
		path := writeCSV(t, `URL,Company,MatchScore,JobTitle
https://example.com,Initech,72,Platform Engineer
`)
		jobs, err := NewCSVSource(path).Jobs(context.Background())
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "Initech", jobs[0].Company)
		assert.Equal(t, "Platform Engineer", jobs[0].JobTitle)
		assert.Equal(t, 72, jobs[0].MatchScore)
		assert.Empty(t, jobs[0].Location)
	})

	t.Run("applied accepts 1 as true", func(t *testing.T) {
		path := writeCSV(t, "JobTitle,Company,Applied\nEngineer,Acme,1\n")
		jobs, err := NewCSVSource(path).Jobs(context.Background())
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.True(t, jobs[0].Applied)
	})

	t.Run("header-only file yields no jobs", func(t *testing.T) {
		path := writeCSV(t, "JobTitle,Company\n")
		jobs, err := NewCSVSource(path).Jobs(context.Background())
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv")).Jobs(context.Background())
		assert.Error(t, err)
	})
}

func TestFindJob(t *testing.T) {
	jobs := []models.Job{
		{JobTitle: "Data Engineer", Company: "Acme Corp"},
		{JobTitle: "Platform Engineer", Company: "Globex"},
	}

	t.Run("matches company substring case-insensitively", func(t *testing.T) {
		job, ok := FindJob(jobs, "globex")
		require.True(t, ok)
		assert.Equal(t, "Platform Engineer", job.JobTitle)
	})

	t.Run("matches title substring", func(t *testing.T) {
		job, ok := FindJob(jobs, "data")
		require.True(t, ok)
		assert.Equal(t, "Acme Corp", job.Company)
	})

	t.Run("first match wins", func(t *testing.T) {
		job, ok := FindJob(jobs, "engineer")
		require.True(t, ok)
		assert.Equal(t, "Acme Corp", job.Company)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := FindJob(jobs, "initech")
		assert.False(t, ok)
	})

	t.Run("empty query never matches", func(t *testing.T) {
		_, ok := FindJob(jobs, "  ")
		assert.False(t, ok)
	})
}
