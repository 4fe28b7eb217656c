package mock

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tobsdb/tablekit/internal/builder"
	"github.com/tobsdb/tablekit/internal/cache"
	"github.com/tobsdb/tablekit/internal/config"
	"github.com/tobsdb/tablekit/internal/dataset"
	"github.com/tobsdb/tablekit/internal/types"
)

var ErrUnknownKey = errors.New("unknown query key")

const DATE_FORMAT = "2006-01-02"

func formatDate(v any) string {
	t, ok := v.(time.Time)
	if !ok {
		return ""
	}
	return t.Format(DATE_FORMAT)
}

func formatBool(v any) string {
	if b, _ := v.(bool); b {
		return "Yes"
	}
	return "No"
}

func EmployeeColumns() []builder.Column[Employee] {
	return []builder.Column[Employee]{
		{ID: "id", Title: "ID", Kind: types.ColumnKindNumericRange, DisableGlobalFilter: true,
			Accessor: func(e Employee) any { return e.ID }},
		{ID: "name", Title: "Name", Accessor: func(e Employee) any { return e.Name }},
		{ID: "nationalNumber", Title: "National Number", Accessor: func(e Employee) any { return e.NationalNumber }},
		{ID: "email", Title: "Email", Accessor: func(e Employee) any { return e.Email }},
		{ID: "role", Title: "Role", Accessor: func(e Employee) any { return e.Role }},
		{ID: "actions", Title: "Actions"},
	}
}

func ElectionColumns() []builder.Column[Election] {
	return []builder.Column[Election]{
		{ID: "id", Title: "ID", Kind: types.ColumnKindNumericRange, DisableGlobalFilter: true,
			Accessor: func(e Election) any { return e.ID }},
		{ID: "electionType", Title: "Election Type", Accessor: func(e Election) any { return e.ElectionType }},
		{ID: "startDate", Title: "Start Date", Kind: types.ColumnKindDateRange, Format: formatDate,
			Accessor: func(e Election) any { return e.StartDate }},
		{ID: "endDate", Title: "End Date", Kind: types.ColumnKindDateRange, Format: formatDate,
			Accessor: func(e Election) any { return e.EndDate }},
		{ID: "ended", Title: "Ended", Format: formatBool, Accessor: func(e Election) any { return e.Ended }},
		{ID: "nationalNumber", Title: "National Number", Accessor: func(e Election) any { return e.NationalNumber }},
		{ID: "actions", Title: "Actions"},
	}
}

func CandidateColumns() []builder.Column[Candidate] {
	return []builder.Column[Candidate]{
		{ID: "name", Title: "Name", Accessor: func(c Candidate) any { return c.Name }},
		{ID: "votes", Title: "Votes", Accessor: func(c Candidate) any { return c.Votes }},
	}
}

// splitKey reads "name" or "name:seed". The seed offsets the source seed so
// that different keys give different rows.
func splitKey(key string) (string, int64, error) {
	name, seed, found := strings.Cut(key, ":")
	if !found {
		return name, 0, nil
	}
	n, err := strconv.ParseInt(seed, 10, 64)
	if err != nil {
		return "", 0, errors.Wrapf(ErrUnknownKey, "bad seed in key %q", key)
	}
	return name, n, nil
}

func fetcher[R any](s *Source, name string, fetch func(*Source, context.Context) ([]R, error)) dataset.Fetcher[R] {
	return func(key string) (cache.FetchFunc[R], error) {
		base, offset, err := splitKey(key)
		if err != nil {
			return nil, err
		}
		if base != name {
			return nil, errors.Wrapf(ErrUnknownKey, "%q", key)
		}
		src := *s
		src.Seed += offset
		return func(ctx context.Context) ([]R, error) { return fetch(&src, ctx) }, nil
	}
}

func build[R any](
	name string, d *config.Dataset, columns []builder.Column[R], id_fn func(R) string, f dataset.Fetcher[R],
) (*dataset.Dataset[R], error) {
	ids := make([]string, len(columns))
	for i, c := range columns {
		ids[i] = c.ID
	}
	if err := d.Validate(ids); err != nil {
		return nil, errors.Wrapf(err, "dataset %s", name)
	}
	return dataset.New(dataset.Config[R]{
		Name:    name,
		Key:     d.Key,
		Columns: columns,
		Options: d.Options(),
		IDFunc:  id_fn,
		Fetcher: f,
	})
}

// Datasets builds every configured dataset the source knows how to serve.
func Datasets(cfg *config.Config, s *Source) (map[string]dataset.Handle, error) {
	handles := map[string]dataset.Handle{}
	for _, name := range cfg.Names() {
		d := cfg.Datasets[name]
		var (
			h   dataset.Handle
			err error
		)
		switch name {
		case "employees":
			h, err = build(name, d, EmployeeColumns(),
				func(e Employee) string { return strconv.Itoa(e.ID) },
				fetcher(s, name, (*Source).FetchEmployees))
		case "elections":
			h, err = build(name, d, ElectionColumns(),
				func(e Election) string { return strconv.Itoa(e.ID) },
				fetcher(s, name, (*Source).FetchElections))
		case "candidates":
			h, err = build(name, d, CandidateColumns(),
				func(c Candidate) string { return c.ID },
				fetcher(s, name, (*Source).FetchCandidates))
		default:
			return nil, errors.Wrapf(ErrUnknownKey, "no source for dataset %s", name)
		}
		if err != nil {
			return nil, err
		}
		handles[name] = h
	}
	return handles, nil
}
