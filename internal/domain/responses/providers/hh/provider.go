package hh

import (
	"context"
	"fmt"
	"io"

	"github.com/honeycarbs/hhnotify/internal/domain"
	"github.com/honeycarbs/hhnotify/internal/domain/responses"
	"github.com/honeycarbs/hhnotify/pkg/hh"
)

// apiClient describes the subset of the hh.ru client used by the provider.
type apiClient interface {
	Vacancies(ctx context.Context, token, employerID string) ([]hh.Vacancy, error)
	Negotiations(ctx context.Context, token, vacancyID string) ([]hh.Negotiation, error)
	TestSolution(ctx context.Context, token, negotiationID string) (string, error)
	Download(ctx context.Context, token, rawURL string, w io.Writer) (int64, error)
}

// Provider implements responses.Provider using the hh.ru API
type Provider struct {
	client     apiClient
	employerID string
}

// NewProvider builds an hh.ru provider for one employer
func NewProvider(client apiClient, employerID string) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("hh provider: client is required")
	}
	if employerID == "" {
		return nil, fmt.Errorf("hh provider: employer id is required")
	}
	return &Provider{client: client, employerID: employerID}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return "hh"
}

// Vacancies returns the employer's vacancies
func (p *Provider) Vacancies(ctx context.Context, token string) ([]domain.Vacancy, error) {
	items, err := p.client.Vacancies(ctx, token, p.employerID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Vacancy, 0, len(items))
	for _, v := range items {
		if v.ID == "" {
			continue
		}
		out = append(out, domain.Vacancy{
			ID:        v.ID,
			Title:     v.Name,
			ExpiresAt: v.ExpiresAt,
		})
	}
	return out, nil
}

// Applications returns normalized responses for a vacancy
func (p *Provider) Applications(ctx context.Context, token, vacancyID string) ([]domain.Application, error) {
	items, err := p.client.Negotiations(ctx, token, vacancyID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Application, 0, len(items))
	for _, n := range items {
		if n.ID == "" {
			continue
		}
		out = append(out, domain.Application{
			ID:               n.ID,
			VacancyID:        vacancyID,
			FirstName:        n.Resume.FirstName,
			LastName:         n.Resume.LastName,
			CreatedAt:        n.CreatedAt,
			ExperienceMonths: n.Resume.ExperienceMonths,
			ResumeURL:        n.Resume.AlternateURL,
			ResumePDFURL:     n.Resume.PDFURL,
		})
	}
	return out, nil
}

// TestSolution fetches the test task answer
func (p *Provider) TestSolution(ctx context.Context, token, applicationID string) (string, error) {
	return p.client.TestSolution(ctx, token, applicationID)
}

// DownloadResume writes the résumé PDF into w
func (p *Provider) DownloadResume(ctx context.Context, token string, app domain.Application, w io.Writer) error {
	if app.ResumePDFURL == "" {
		return fmt.Errorf("hh provider: application %s has no resume pdf url", app.ID)
	}
	_, err := p.client.Download(ctx, token, app.ResumePDFURL, w)
	return err
}

var _ responses.Provider = (*Provider)(nil)
