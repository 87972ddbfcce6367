package http

import (
	"context"
	"net/http"
	"sync/atomic"

	"budget/internal/core"
	"budget/internal/log"
)

const categoryListKey = "categories:active"

// getCategories serves the active list from cache when possible. The
// returned slice is a copy.
func (s *Server) getCategories(ctx context.Context) ([]core.Category, error) {
	if cached, ok := s.categoryCache.Get(categoryListKey); ok {
		log.FromContext(ctx).DebugContext(ctx, "Categories cache hit", log.FieldCount, len(cached))
		return cloneList(cached), nil
	}

	cats, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.categoryCache.Set(categoryListKey, cats)
	return cloneList(cats), nil
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.getCategories(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, log.OpList, categoryErrors.withFailure("Failed to fetch categories"))
		return
	}
	NewJSONResponse().Data(cats).Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := s.categories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, log.OpRead, categoryErrors)
		return
	}
	NewJSONResponse().Data(cat).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	cat, err := s.categories.Create(r.Context(), ParseCategoryName(p))
	if err != nil {
		s.writeServiceError(w, r, err, log.OpCreate, categoryErrors.withFailure("Failed to create category"))
		return
	}

	s.invalidateCategories()
	atomic.AddInt64(&s.appMetrics.categoriesCreated, 1)
	NewJSONResponse().Status(http.StatusCreated).Data(cat).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}

	cat, err := s.categories.Update(r.Context(), r.PathValue("id"), ParseCategoryName(p))
	if err != nil {
		s.writeServiceError(w, r, err, log.OpUpdate, categoryErrors.withFailure("Failed to update category"))
		return
	}

	s.invalidateCategories()
	NewJSONResponse().Data(cat).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.categories.SoftDelete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, log.OpSoftDelete, categoryErrors.withFailure("Failed to delete category"))
		return
	}
	if !deleted {
		NotFoundError(categoryErrors.notFound).Write(w)
		return
	}

	s.invalidateCategories()
	NewJSONResponse().Write(w)
}
