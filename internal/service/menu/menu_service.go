package menu

import (
	"context"

	"bistrobook/internal/domain"
	"bistrobook/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DefaultLocale = "sv"

type MenuUseCase interface {
	Menu(ctx context.Context, locale string) ([]domain.MenuCategory, error)
	CreateCategory(ctx context.Context, tr repository.Translation) (*domain.MenuCategory, error)
	UpdateCategory(ctx context.Context, id int64, tr repository.Translation) (*domain.MenuCategory, error)
	DeleteCategory(ctx context.Context, id int64) error
	CreateItem(ctx context.Context, input ItemInput) (*domain.MenuItem, error)
	UpdateItem(ctx context.Context, id int64, input ItemInput) (*domain.MenuItem, error)
	DeleteItem(ctx context.Context, id int64) error
}

type Cache interface {
	GetMenu(ctx context.Context, locale string) ([]domain.MenuCategory, error)
	SetMenu(ctx context.Context, locale string, categories []domain.MenuCategory) error
	InvalidateMenu(ctx context.Context) error
}

type MenuService struct {
	tx    repository.TxRunner
	repo  repository.MenuRepository
	cache Cache
	log   *logrus.Logger
}

type ItemInput struct {
	CategoryID  int64
	Price       decimal.Decimal
	Available   bool
	Locale      string
	Name        string
	Description string
}

func NewMenuService(tx repository.TxRunner, repo repository.MenuRepository, cache Cache, log *logrus.Logger) *MenuService {
	return &MenuService{tx: tx, repo: repo, cache: cache, log: log}
}

// Menu is cache-aside per locale; a cache failure falls through to the
// database.
func (s *MenuService) Menu(ctx context.Context, locale string) ([]domain.MenuCategory, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	if s.cache != nil {
		if cached, err := s.cache.GetMenu(ctx, locale); err == nil && cached != nil {
			return cached, nil
		}
	}

	categories, err := s.repo.Menu(ctx, locale)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetMenu(ctx, locale, categories); err != nil {
			s.log.WithError(err).Warn("failed to cache menu")
		}
	}
	return categories, nil
}

func (s *MenuService) CreateCategory(ctx context.Context, tr repository.Translation) (*domain.MenuCategory, error) {
	if tr.Locale == "" || tr.Name == "" {
		return nil, domain.Validationf("locale and name are required")
	}
	var created *domain.MenuCategory
	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = s.repo.CreateCategory(ctx, tx, tr)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *MenuService) UpdateCategory(ctx context.Context, id int64, tr repository.Translation) (*domain.MenuCategory, error) {
	if tr.Locale == "" || tr.Name == "" {
		return nil, domain.Validationf("locale and name are required")
	}
	var updated *domain.MenuCategory
	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = s.repo.UpsertCategoryTranslation(ctx, tx, id, tr)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *MenuService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *MenuService) CreateItem(ctx context.Context, input ItemInput) (*domain.MenuItem, error) {
	if err := validateItem(input, true); err != nil {
		return nil, err
	}
	item := &domain.MenuItem{
		CategoryID: input.CategoryID,
		Price:      input.Price,
		Available:  input.Available,
	}
	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		return s.repo.CreateItem(ctx, tx, item, repository.Translation{
			Locale:      input.Locale,
			Name:        input.Name,
			Description: input.Description,
		})
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *MenuService) UpdateItem(ctx context.Context, id int64, input ItemInput) (*domain.MenuItem, error) {
	if err := validateItem(input, false); err != nil {
		return nil, err
	}
	item := &domain.MenuItem{
		ID:         id,
		CategoryID: input.CategoryID,
		Price:      input.Price,
		Available:  input.Available,
	}
	var updated *domain.MenuItem
	err := s.tx.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = s.repo.UpdateItem(ctx, tx, item, repository.Translation{
			Locale:      input.Locale,
			Name:        input.Name,
			Description: input.Description,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *MenuService) DeleteItem(ctx context.Context, id int64) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *MenuService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMenu(ctx); err != nil {
		s.log.WithError(err).Warn("failed to invalidate menu cache")
	}
}

func validateItem(input ItemInput, requireCategory bool) error {
	switch {
	case requireCategory && input.CategoryID <= 0:
		return domain.Validationf("category_id is required")
	case input.Price.IsNegative() || input.Price.IsZero():
		return domain.Validationf("price must be positive")
	case input.Locale == "" || input.Name == "":
		return domain.Validationf("locale and name are required")
	}
	return nil
}

var _ MenuUseCase = (*MenuService)(nil)
