package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"redline/internal/config"
	"redline/internal/domain"
	"redline/internal/domain/services"
)

// TextImprover is the model call behind the improve endpoint.
type TextImprover interface {
	ImproveText(ctx context.Context, text, instruction string) (improved, reason string, err error)
}

// improveService implements the ImproveService interface
type improveService struct {
	improver TextImprover
	logger   *slog.Logger
}

// NewImproveService creates a new improve service
func NewImproveService(improver TextImprover, logger *slog.Logger) services.ImproveService {
	return &improveService{
		improver: improver,
		logger:   logger,
	}
}

// ImproveText rewrites the given text via the model. Failures surface as a
// non-success result rather than an error so the client can fall back to the
// original text.
func (s *improveService) ImproveText(ctx context.Context, req *services.ImproveRequest) (*services.ImproveResult, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Text, validation.Required, validation.Length(1, config.MaxImproveTextLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	improved, reason, err := s.improver.ImproveText(ctx, req.Text, req.Instruction)
	if err != nil {
		s.logger.Warn("improve text failed", "error", err)
		return &services.ImproveResult{
			Original: req.Text,
			Improved: req.Text,
			Success:  false,
		}, nil
	}

	s.logger.Info("text improved",
		"original_len", len(req.Text),
		"improved_len", len(improved),
	)

	return &services.ImproveResult{
		Original: req.Text,
		Improved: improved,
		Reason:   reason,
		Success:  true,
	}, nil
}
