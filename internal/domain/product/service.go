package product

import (
	"context"
	"fmt"
	"time"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain"
	"stockbook/pkg/logger"
)

// Service provides business operations for the product registry.
// Stock mutation is deliberately absent from this surface: the counter
// belongs to the ledger engine.
type Service struct {
	repo Repository
}

// NewService creates a new product service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new product with zero stock.
func (s *Service) Create(ctx context.Context, partNo, description string) (*Product, error) {
	p := New(partNo, description)

	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	if exists, err := s.repo.ExistsByPartNo(ctx, partNo); err != nil {
		return nil, fmt.Errorf("check part number: %w", err)
	} else if exists {
		return nil, apperror.NewDuplicate("product", "part_no", partNo)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Info(ctx, "product created",
		"id", p.ID,
		"part_no", p.PartNo)

	return p, nil
}

// UpdateInput carries product identity edits. Nil fields keep the
// current value.
type UpdateInput struct {
	PartNo      *string
	Description *string
}

// Update modifies a product's identity fields. The stock counter is not
// editable through this path.
func (s *Service) Update(ctx context.Context, productID id.ID, input UpdateInput) (*Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.PartNo != nil && *input.PartNo != p.PartNo {
		if exists, err := s.repo.ExistsByPartNo(ctx, *input.PartNo); err != nil {
			return nil, fmt.Errorf("check part number: %w", err)
		} else if exists {
			return nil, apperror.NewDuplicate("product", "part_no", *input.PartNo)
		}
		p.PartNo = *input.PartNo
	}
	if input.Description != nil {
		p.Description = *input.Description
	}

	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	logger.Info(ctx, "product updated", "id", p.ID, "part_no", p.PartNo)
	return p, nil
}

// Delete removes a product. Fails while transaction lines reference it.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}
	logger.Info(ctx, "product deleted", "id", productID)
	return nil
}

// Get resolves a product by ID or part number.
// A reference that parses as a UUID is treated as an ID, anything else
// as a part number.
func (s *Service) Get(ctx context.Context, ref string) (*Product, error) {
	if productID, err := id.Parse(ref); err == nil {
		return s.repo.GetByID(ctx, productID)
	}
	return s.repo.GetByPartNo(ctx, ref)
}

// GetByID retrieves a product by ID.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// List retrieves products with filtering, ordered by part number.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.List(ctx, filter)
}

// Snapshot returns all products with their current stock, ordered by
// part number. This is the primary read for checking inventory levels.
func (s *Service) Snapshot(ctx context.Context) ([]*Product, error) {
	result, err := s.repo.List(ctx, domain.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return result.Items, nil
}
