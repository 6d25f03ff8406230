package store

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amishk599/jobmerge/internal/model"
	"github.com/amishk599/jobmerge/internal/normalize"
)

const jobColumns = `id, title, description, location, salary, job_type, requirements,
	company_id, company_name, company_location, company_logo, url, created_at`

const createJobsTable = `CREATE TABLE IF NOT EXISTS jobs (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	location         TEXT NOT NULL DEFAULT '',
	salary           BIGINT NOT NULL DEFAULT 0,
	job_type         TEXT NOT NULL DEFAULT '',
	requirements     TEXT NOT NULL DEFAULT '[]',
	company_id       TEXT NOT NULL DEFAULT '',
	company_name     TEXT NOT NULL DEFAULT '',
	company_location TEXT NOT NULL DEFAULT '',
	company_logo     TEXT NOT NULL DEFAULT '',
	url              TEXT NOT NULL DEFAULT '',
	created_at       BIGINT NOT NULL DEFAULT 0
)`

const createJobsIndex = `CREATE INDEX IF NOT EXISTS jobs_created_at_idx ON jobs (created_at DESC)`

// dialect captures the SQL differences between the supported databases.
type dialect struct {
	like        string
	placeholder func(n int) string
}

var (
	sqliteDialect = dialect{
		like:        "LIKE", // case-insensitive for ASCII in SQLite
		placeholder: func(int) string { return "?" },
	}
	postgresDialect = dialect{
		like:        "ILIKE",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}
)

// buildFindQuery renders the SELECT for a StoreFilter. Patterns are matched
// as case-insensitive substrings; LIKE wildcards in user input are escaped.
// SQLite LIKE (and ILIKE under a C collation) only folds ASCII, so patterns
// with other characters are not pushed down and the caller's post-filter
// decides on them.
func buildFindQuery(d dialect, f model.StoreFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	match := func(column string) string {
		return column + " " + d.like + " " + d.placeholder(len(args)) + ` ESCAPE '\'`
	}
	addGroup := func(pattern string, columns ...string) {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || !isASCII(pattern) {
			return
		}
		like := "%" + escapeLike(pattern) + "%"
		parts := make([]string, 0, len(columns))
		for _, c := range columns {
			args = append(args, like)
			parts = append(parts, match(c))
		}
		where = append(where, "("+strings.Join(parts, " OR ")+")")
	}

	addGroup(f.KeywordPattern, "title", "description", "company_name")
	addGroup(f.LocationPattern, "location", "company_location")
	addGroup(f.JobTypePattern, "job_type")

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(jobColumns)
	sb.WriteString(" FROM jobs")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, id ASC")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sb.WriteString(" LIMIT ")
		sb.WriteString(d.placeholder(len(args)))
	}
	return sb.String(), args
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// rowScanner is satisfied by *sql.Row(s) and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(rs rowScanner) (model.Job, error) {
	var (
		job          model.Job
		requirements string
		createdAt    int64
		salary       int64
	)
	err := rs.Scan(
		&job.ID, &job.Title, &job.Description, &job.Location, &salary, &job.JobType, &requirements,
		&job.Company.ID, &job.Company.Name, &job.Company.Location, &job.Company.Logo, &job.URL, &createdAt,
	)
	if err != nil {
		return model.Job{}, err
	}

	job.Salary = normalize.CoerceSalary(salary)
	job.SalaryDisclosed = job.Salary > 0
	job.Requirements = decodeRequirements(requirements)
	job.CreatedAt = normalize.Epoch
	if createdAt > 0 {
		job.CreatedAt = time.UnixMilli(createdAt).UTC()
	}
	job.SetSource(model.SourceDatabase)
	return job, nil
}

func decodeRequirements(raw string) []string {
	var reqs []string
	if err := json.Unmarshal([]byte(raw), &reqs); err != nil || reqs == nil {
		return []string{}
	}
	return reqs
}

// insertArgs flattens a job into the column order of jobColumns.
func insertArgs(job model.Job) ([]any, error) {
	reqs := job.Requirements
	if reqs == nil {
		reqs = []string{}
	}
	encoded, err := json.Marshal(reqs)
	if err != nil {
		return nil, err
	}
	var createdAt int64
	if !job.CreatedAt.IsZero() && job.CreatedAt.After(normalize.Epoch) {
		createdAt = job.CreatedAt.UnixMilli()
	}
	return []any{
		job.ID, job.Title, job.Description, job.Location, int64(job.Salary), job.JobType, string(encoded),
		job.Company.ID, job.Company.Name, job.Company.Location, job.Company.Logo, job.URL, createdAt,
	}, nil
}
