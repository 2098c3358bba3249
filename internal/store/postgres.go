// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"talent-matching/internal/common/errors"
	"talent-matching/internal/common/logger"
	"talent-matching/internal/models"
)

// PostgresStore serves entity reads from the platform's relational store.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-store"}),
	}
}

const candidateColumns = `id, full_name, skills, experience_level,
	expected_salary_min, expected_salary_max, salary_currency,
	location, remote_ok, updated_at`

const jobColumns = `id, title, company_id, required_skills, experience_level,
	salary_min, salary_max, salary_currency, location, remote_ok, updated_at`

func (s *PostgresStore) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+candidateColumns+`
		FROM candidates WHERE id = $1`, id)

	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewEntityNotFoundError(string(models.KindCandidate), id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get-candidate", err)
	}
	return c, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs WHERE id = $1`, id)

	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewEntityNotFoundError(string(models.KindJob), id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get-job", err)
	}
	return j, nil
}

func (s *PostgresStore) ListCandidates(ctx context.Context, c Criteria) ([]models.Candidate, error) {
	query, args := buildPoolQuery(
		`SELECT `+candidateColumns+` FROM candidates`, "skills", c)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list-candidates", err)
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		cand, err := scanCandidate(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("list-candidates", err)
		}
		out = append(out, *cand)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list-candidates", err)
	}
	return out, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, c Criteria) ([]models.Job, error) {
	query, args := buildPoolQuery(
		`SELECT `+jobColumns+` FROM jobs`, "required_skills", c)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list-jobs", err)
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("list-jobs", err)
		}
		out = append(out, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list-jobs", err)
	}
	return out, nil
}

// buildPoolQuery appends WHERE clauses for the set criteria. Results are
// ordered by id so a pool fetch is deterministic across identical calls.
func buildPoolQuery(base, skillsColumn string, c Criteria) (string, []interface{}) {
	query := base
	var args []interface{}
	argn := 0

	next := func() string {
		argn++
		return fmt.Sprintf("$%d", argn)
	}

	where := ""
	and := func(clause string) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	if len(c.Skills) > 0 {
		and(skillsColumn + " && " + next())
		args = append(args, pq.Array(c.Skills))
	}
	if c.Location != "" {
		and("LOWER(location) = " + next())
		args = append(args, strings.ToLower(c.Location))
	}
	if c.RemoteOnly {
		and("remote_ok = TRUE")
	}

	query += where + " ORDER BY id"
	if c.Limit > 0 {
		query += " LIMIT " + next()
		args = append(args, c.Limit)
	}
	return query, args
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var c models.Candidate
	var fullName, currency, location, updatedAt sql.NullString
	var salaryMin, salaryMax sql.NullInt64

	err := row.Scan(
		&c.ID, &fullName, pq.Array(&c.Skills), &c.ExperienceLevel,
		&salaryMin, &salaryMax, &currency,
		&location, &c.RemoteOK, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.FullName = fullName.String
	c.ExpectedSalaryMin = int(salaryMin.Int64)
	c.ExpectedSalaryMax = int(salaryMax.Int64)
	c.SalaryCurrency = currency.String
	c.Location = location.String
	c.UpdatedAt = updatedAt.String
	return &c, nil
}

func scanJob(row rowScanner) (*models.Job, error) {
	var j models.Job
	var title, companyID, currency, location, updatedAt sql.NullString
	var salaryMin, salaryMax sql.NullInt64

	err := row.Scan(
		&j.ID, &title, &companyID, pq.Array(&j.RequiredSkills), &j.ExperienceLevel,
		&salaryMin, &salaryMax, &currency,
		&location, &j.RemoteOK, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	j.Title = title.String
	j.CompanyID = companyID.String
	j.SalaryMin = int(salaryMin.Int64)
	j.SalaryMax = int(salaryMax.Int64)
	j.SalaryCurrency = currency.String
	j.Location = location.String
	j.UpdatedAt = updatedAt.String
	return &j, nil
}
