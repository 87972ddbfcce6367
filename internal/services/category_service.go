package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/ports"
)

// CategoryService manages categories. Deletion is soft: rows keep their id
// and get a deleted_at timestamp.
type CategoryService struct {
	base
}

func NewCategoryService(backend ports.Backend, events EventPublisher, logger *log.Logger) *CategoryService {
	return &CategoryService{base: newBase(backend, events, logger, log.ComponentCategory)}
}

// ListActive returns categories that are not soft-deleted, oldest first.
func (s *CategoryService) ListActive(ctx context.Context) ([]core.Category, error) {
	cats, err := withConn(ctx, s.backend, func(c ports.Conn) ([]core.Category, error) {
		return c.ListActiveCategories(ctx)
	})
	if err != nil {
		s.logFailure(ctx, log.OpList, err, nil)
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Get returns an active category or ports.ErrNotFound.
func (s *CategoryService) Get(ctx context.Context, id string) (core.Category, error) {
	if !validID(id) {
		return core.Category{}, ports.ErrNotFound
	}
	cat, err := withConn(ctx, s.backend, func(c ports.Conn) (core.Category, error) {
		return c.GetActiveCategory(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return core.Category{}, err
		}
		s.logFailure(ctx, log.OpRead, err, log.LogFields{log.FieldCategoryID: id})
		return core.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}
	return cat, nil
}

// Create assigns the next palette color from the active category count.
// Count and insert are separate steps, so two concurrent creates can get
// the same color.
func (s *CategoryService) Create(ctx context.Context, name string) (core.Category, error) {
	if err := core.ValidateCategoryName(name); err != nil {
		return core.Category{}, err
	}

	cat, err := withConn(ctx, s.backend, func(c ports.Conn) (core.Category, error) {
		count, err := c.CountActiveCategories(ctx)
		if err != nil {
			return core.Category{}, err
		}
		color, err := core.ColorFor(count)
		if err != nil {
			return core.Category{}, err
		}
		now := s.now()
		cat := core.Category{
			ID:        uuid.NewString(),
			Name:      strings.TrimSpace(name),
			Color:     color,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := c.InsertCategory(ctx, cat); err != nil {
			return core.Category{}, err
		}
		return cat, nil
	})
	if err != nil {
		s.logFailure(ctx, log.OpCreate, err, nil)
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	s.logger.InfoContext(ctx, "Category created", log.NewFields().WithCategory(cat).WithOperation(log.OpCreate).ToSlice()...)
	s.publish(ctx, amqp.CategoryCreated, cat.ID)
	return cat, nil
}

// Update renames an active category. The color never changes.
func (s *CategoryService) Update(ctx context.Context, id, name string) (core.Category, error) {
	if err := core.ValidateCategoryName(name); err != nil {
		return core.Category{}, err
	}
	if !validID(id) {
		return core.Category{}, ports.ErrNotFound
	}

	cat, err := withConn(ctx, s.backend, func(c ports.Conn) (core.Category, error) {
		return c.UpdateCategoryName(ctx, id, strings.TrimSpace(name), s.now())
	})
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return core.Category{}, err
		}
		s.logFailure(ctx, log.OpUpdate, err, log.LogFields{log.FieldCategoryID: id})
		return core.Category{}, fmt.Errorf("update category %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Category updated", log.NewFields().WithCategory(cat).WithOperation(log.OpUpdate).ToSlice()...)
	s.publish(ctx, amqp.CategoryUpdated, cat.ID)
	return cat, nil
}

// SoftDelete marks an active category deleted. It reports false when the
// id is unknown or already deleted.
func (s *CategoryService) SoftDelete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}

	deleted, err := withConn(ctx, s.backend, func(c ports.Conn) (bool, error) {
		return c.SoftDeleteCategory(ctx, id, s.now())
	})
	if err != nil {
		s.logFailure(ctx, log.OpSoftDelete, err, log.LogFields{log.FieldCategoryID: id})
		return false, fmt.Errorf("delete category %s: %w", id, err)
	}

	if deleted {
		s.logger.InfoContext(ctx, "Category deleted", log.FieldCategoryID, id, log.FieldOperation, log.OpSoftDelete)
		s.publish(ctx, amqp.CategoryDeleted, id)
	}
	return deleted, nil
}
