// internal/store/postgres_test.go
package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-matching/internal/common/errors"
	"talent-matching/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func candidateRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "full_name", "skills", "experience_level",
		"expected_salary_min", "expected_salary_max", "salary_currency",
		"location", "remote_ok", "updated_at",
	})
}

func jobRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "company_id", "required_skills", "experience_level",
		"salary_min", "salary_max", "salary_currency",
		"location", "remote_ok", "updated_at",
	})
}

// ==========================
// Core Functionality Tests
// ==========================

func TestPostgresStore_GetCandidate(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	mock.ExpectQuery(`(?s)SELECT .+ FROM candidates WHERE id = \$1`).
		WithArgs("cand-1").
		WillReturnRows(candidateRows().AddRow(
			"cand-1", "Ada Example", "{go,sql}", "senior",
			60000, 80000, "USD", "Berlin", true, "2026-08-01T00:00:00Z",
		))

	c, err := s.GetCandidate(context.Background(), "cand-1")
	require.NoError(t, err)
	assert.Equal(t, "cand-1", c.ID)
	assert.Equal(t, []string{"go", "sql"}, c.Skills)
	assert.Equal(t, "senior", c.ExperienceLevel)
	assert.Equal(t, 60000, c.ExpectedSalaryMin)
	assert.Equal(t, "Berlin", c.Location)
	assert.True(t, c.RemoteOK)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCandidate_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	mock.ExpectQuery(`(?s)SELECT .+ FROM candidates WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(candidateRows())

	_, err := s.GetCandidate(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEntityNotFound))
}

func TestPostgresStore_GetJob(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	mock.ExpectQuery(`(?s)SELECT .+ FROM jobs WHERE id = \$1`).
		WithArgs("job-1").
		WillReturnRows(jobRows().AddRow(
			"job-1", "Backend Engineer", "comp-1", "{go,kubernetes}", "middle",
			nil, nil, nil, nil, false, nil,
		))

	j, err := s.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", j.ID)
	assert.Equal(t, "Backend Engineer", j.Title)
	assert.Equal(t, []string{"go", "kubernetes"}, j.RequiredSkills)
	assert.Equal(t, 0, j.SalaryMin)
	assert.Empty(t, j.Location)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListJobs_WithCriteria(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	mock.ExpectQuery(`(?s)SELECT .+ FROM jobs WHERE required_skills && \$1 AND LOWER\(location\) = \$2 AND remote_ok = TRUE ORDER BY id LIMIT \$3`).
		WithArgs(sqlmock.AnyArg(), "berlin", 10).
		WillReturnRows(jobRows().
			AddRow("job-1", "Backend Engineer", "comp-1", "{go}", "middle",
				50000, 70000, "EUR", "Berlin", true, nil).
			AddRow("job-2", "Platform Engineer", "comp-2", "{go,aws}", "senior",
				nil, nil, nil, "Berlin", true, nil))

	jobs, err := s.ListJobs(context.Background(), Criteria{
		Skills:     []string{"go"},
		Location:   "Berlin",
		RemoteOnly: true,
		Limit:      10,
	})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, "job-2", jobs[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCandidates_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	mock.ExpectQuery(`(?s)SELECT .+ FROM candidates ORDER BY id`).
		WillReturnError(sql.ErrConnDone)

	_, err := s.ListCandidates(context.Background(), Criteria{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeQueryExecutionFailed))
}

func TestBuildPoolQuery(t *testing.T) {
	tests := []struct {
		name          string
		criteria      Criteria
		expectedQuery string
		expectedArgs  int
	}{
		{
			name:          "no criteria",
			criteria:      Criteria{},
			expectedQuery: "SELECT id FROM candidates ORDER BY id",
			expectedArgs:  0,
		},
		{
			name:          "limit only",
			criteria:      Criteria{Limit: 5},
			expectedQuery: "SELECT id FROM candidates ORDER BY id LIMIT $1",
			expectedArgs:  1,
		},
		{
			name:          "all criteria",
			criteria:      Criteria{Skills: []string{"go"}, Location: "berlin", RemoteOnly: true, Limit: 5},
			expectedQuery: "SELECT id FROM candidates WHERE skills && $1 AND LOWER(location) = $2 AND remote_ok = TRUE ORDER BY id LIMIT $3",
			expectedArgs:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildPoolQuery("SELECT id FROM candidates", "skills", tt.criteria)
			assert.Equal(t, tt.expectedQuery, query)
			assert.Len(t, args, tt.expectedArgs)
		})
	}
}

func TestBuildPoolQuery_LowercasesLocation(t *testing.T) {
	_, args := buildPoolQuery("SELECT id FROM candidates", "skills", Criteria{Location: "New York"})

	// The clause compares against LOWER(location), so the bound value must
	// be lowercased or the predicate can never match.
	require.Len(t, args, 1)
	assert.Equal(t, "new york", args[0])
}
