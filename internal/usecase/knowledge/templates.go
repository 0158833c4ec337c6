package knowledge

import (
	"context"
	"strings"

	"helpdesk/internal/errs"
	"helpdesk/internal/ports"
	"helpdesk/internal/usecase/validate"
)

func normalizeTemplate(input TemplateInput) (TemplateInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	if err := validate.Struct(input); err != nil {
		return TemplateInput{}, err
	}
	return input, nil
}

func (s *Service) CreateTemplate(ctx context.Context, input TemplateInput) (uint64, error) {
	if err := s.checkWritable(ctx); err != nil {
		return 0, err
	}
	input, err := normalizeTemplate(input)
	if err != nil {
		return 0, err
	}

	created, err := s.repo.CreateTemplate(ctx, ports.TemplateWrite{Title: input.Title, Content: input.Content})
	if err != nil {
		return 0, errs.Wrap(err, "create template")
	}
	return created.TemplateID, nil
}

func (s *Service) GetTemplate(ctx context.Context, templateID uint64) (ports.Template, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.Template{}, err
	}
	return s.repo.GetTemplate(ctx, templateID)
}

func (s *Service) ListTemplates(ctx context.Context) ([]ports.Template, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListTemplates(ctx)
}

func (s *Service) UpdateTemplate(ctx context.Context, templateID uint64, input TemplateInput) error {
	if err := s.checkWritable(ctx); err != nil {
		return err
	}
	input, err := normalizeTemplate(input)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateTemplate(ctx, templateID, ports.TemplateWrite{Title: input.Title, Content: input.Content}); err != nil {
		return errs.Wrapf(err, "update template %d", templateID)
	}
	return nil
}

func (s *Service) DeleteTemplate(ctx context.Context, templateID uint64) error {
	if err := s.checkWritable(ctx); err != nil {
		return err
	}
	if err := s.repo.DeleteTemplate(ctx, templateID); err != nil {
		return errs.Wrapf(err, "delete template %d", templateID)
	}
	return nil
}
