// Package health reads the SchoolMed dashboard resources through the
// authenticated fetch pipeline. Every read is role-gated: a caller whose
// session lacks a matching role gets ErrAccessDenied, never a panic.
package health

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/DinhTQSE/schoolmed-client/fetch"
	"github.com/DinhTQSE/schoolmed-client/users"
)

const (
	declarationsPath = "/api/health-declarations"
	medicationsPath  = "/api/medication-requests"
	vaccinationsPath = "/api/vaccinations"
	checkupsPath     = "/api/checkup-schedules"

	// Dashboard lists are read-mostly; a short TTL keeps repeat renders off
	// the network.
	dashboardCacheTTL = time.Minute
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAccessDenied     = errors.New("access denied: no matching role")

	ErrFetcherRequired = errors.New("fetcher is required")
	ErrSessionRequired = errors.New("session reader is required")
)

// SessionReader is the slice of the session manager the service consults for
// role gating.
type SessionReader interface {
	CurrentUser() (*users.User, bool)
}

// Service reads school health resources on behalf of the current session.
type Service struct {
	fetcher *fetch.Fetcher
	session SessionReader
	baseURL string
	logger  zerolog.Logger
}

// Option modifies a Service instance.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service reading from the API at baseURL.
func NewService(fetcher *fetch.Fetcher, session SessionReader, baseURL string, options ...Option) (*Service, error) {
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if session == nil {
		return nil, ErrSessionRequired
	}

	s := &Service{
		fetcher: fetcher,
		session: session,
		baseURL: baseURL,
		logger:  zerolog.Nop(),
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// HealthDeclarations lists health declarations visible to the current role.
func (s *Service) HealthDeclarations(ctx context.Context) ([]HealthDeclaration, error) {
	var out []HealthDeclaration
	err := s.list(ctx, declarationsPath, &out,
		users.RoleAdmin, users.RoleSchoolNurse, users.RoleParent, users.RoleStudent)
	return out, err
}

// MedicationRequests lists medication requests. Students do not see these;
// they are filed and reviewed by parents and staff.
func (s *Service) MedicationRequests(ctx context.Context) ([]MedicationRequest, error) {
	var out []MedicationRequest
	err := s.list(ctx, medicationsPath, &out,
		users.RoleAdmin, users.RoleSchoolNurse, users.RoleParent)
	return out, err
}

// VaccinationRecords lists vaccination records visible to the current role.
func (s *Service) VaccinationRecords(ctx context.Context) ([]VaccinationRecord, error) {
	var out []VaccinationRecord
	err := s.list(ctx, vaccinationsPath, &out,
		users.RoleAdmin, users.RoleSchoolNurse, users.RoleParent, users.RoleStudent)
	return out, err
}

// CheckupSchedules lists upcoming periodic checkups.
func (s *Service) CheckupSchedules(ctx context.Context) ([]CheckupSchedule, error) {
	var out []CheckupSchedule
	err := s.list(ctx, checkupsPath, &out,
		users.RoleAdmin, users.RoleSchoolNurse, users.RoleParent, users.RoleStudent)
	return out, err
}

func (s *Service) list(ctx context.Context, path string, out any, allowed ...users.RoleType) error {
	user, ok := s.session.CurrentUser()
	if !ok {
		return ErrNotAuthenticated
	}
	if !user.HasAnyRole(allowed...) {
		s.logger.Debug().
			Str("path", path).
			Str("role", string(user.PrimaryRole())).
			Msg("role not allowed for resource")
		return ErrAccessDenied
	}

	result, err := s.fetcher.Get(ctx, s.baseURL+path, fetch.Options{
		CacheExpiry: dashboardCacheTTL,
	})
	if err != nil {
		return err
	}
	return result.Decode(out)
}
