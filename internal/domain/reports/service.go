// Package reports assembles the sales dashboard and its printable export.
package reports

import (
	"context"

	"laluna/internal/domain/order"
)

// Source provides the order aggregates a report is built from.
type Source interface {
	Reports(ctx context.Context, monthsBack int) (*order.Reports, error)
}

// Service builds sales reports.
type Service struct {
	source Source
	title  string
}

// NewService creates a report service. title heads the PDF export.
func NewService(source Source, title string) *Service {
	return &Service{source: source, title: title}
}

// Build returns statistics, the monthly breakdown and top customers.
func (s *Service) Build(ctx context.Context, monthsBack int) (*order.Reports, error) {
	return s.source.Reports(ctx, monthsBack)
}

// BuildPDF renders the report for the last monthsBack months as a PDF document.
func (s *Service) BuildPDF(ctx context.Context, monthsBack int) ([]byte, error) {
	r, err := s.source.Reports(ctx, monthsBack)
	if err != nil {
		return nil, err
	}
	return RenderPDF(s.title, r)
}
