package responses

import (
	"context"
	"io"

	"github.com/honeycarbs/hhnotify/internal/domain"
)

// Provider represents the recruiting platform the pipeline polls
type Provider interface {
	// e.g. "hh"
	Name() string

	// Vacancies lists the employer's open vacancies
	Vacancies(ctx context.Context, token string) ([]domain.Vacancy, error)

	// Applications lists responses on a vacancy
	Applications(ctx context.Context, token, vacancyID string) ([]domain.Application, error)

	// TestSolution returns the test task answer for an application, "" when absent
	TestSolution(ctx context.Context, token, applicationID string) (string, error)

	// DownloadResume streams the résumé document into w
	DownloadResume(ctx context.Context, token string, app domain.Application, w io.Writer) error
}
