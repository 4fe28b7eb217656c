package mock

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

var (
	EMPLOYEE_ROLES = []string{"Admin", "Manager", "Staff"}
	ELECTION_TYPES = []string{
		"Presidential Election", "Parliamentary Election", "Local Election", "Referendum",
	}
)

const (
	EMPLOYEE_COUNT  = 50
	ELECTION_COUNT  = 10
	CANDIDATE_COUNT = 8
)

type Employee struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	NationalNumber string `json:"nationalNumber"`
	Email          string `json:"email"`
	Role           string `json:"role"`
}

type Election struct {
	ID             int       `json:"id"`
	ElectionType   string    `json:"electionType"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Ended          bool      `json:"ended"`
	NationalNumber string    `json:"nationalNumber"`
}

type Candidate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Votes int    `json:"votes"`
}

// Source generates fake rows. The same seed always gives the same rows.
type Source struct {
	Seed    int64
	Latency time.Duration
	// fixed reference point for generated dates
	Now time.Time
}

func NewSource(seed int64, latency time.Duration) *Source {
	return &Source{seed, latency, time.Now()}
}

func (s *Source) faker() *gofakeit.Faker { return gofakeit.New(s.Seed) }

// wait simulates the round trip of a request.
func (s *Source) wait(ctx context.Context) error {
	if s.Latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.Latency):
		return nil
	}
}

func (s *Source) Employees(n int) []Employee {
	f := s.faker()
	employees := make([]Employee, n)
	for i := range employees {
		employees[i] = Employee{
			ID:             i + 1,
			Name:           f.Name(),
			NationalNumber: f.Numerify("##########"),
			Email:          f.Email(),
			Role:           f.RandomString(EMPLOYEE_ROLES),
		}
	}
	return employees
}

func (s *Source) Elections(n int) []Election {
	f := s.faker()
	now := s.Now.UTC().Truncate(time.Second)
	elections := make([]Election, n)
	for i := range elections {
		start := f.DateRange(now.AddDate(-1, 0, 0), now.AddDate(0, 1, 0))
		end := start.AddDate(0, 0, f.Number(1, 30))
		elections[i] = Election{
			ID:             i + 1,
			ElectionType:   f.RandomString(ELECTION_TYPES),
			StartDate:      start,
			EndDate:        end,
			Ended:          end.Before(now),
			NationalNumber: f.Numerify("##########"),
		}
	}
	return elections
}

func (s *Source) Candidates(n int) []Candidate {
	f := s.faker()
	candidates := make([]Candidate, n)
	for i := range candidates {
		candidates[i] = Candidate{
			ID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte(f.UUID())).String(),
			Name:  f.Name(),
			Votes: f.Number(1000, 100000),
		}
	}
	return candidates
}

func (s *Source) FetchEmployees(ctx context.Context) ([]Employee, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.Employees(EMPLOYEE_COUNT), nil
}

func (s *Source) FetchElections(ctx context.Context) ([]Election, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.Elections(ELECTION_COUNT), nil
}

func (s *Source) FetchCandidates(ctx context.Context) ([]Candidate, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.Candidates(CANDIDATE_COUNT), nil
}
