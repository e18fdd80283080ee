package app

import (
	"context"
	"strings"

	"github.com/jcmexdev/shop-checkout/internal/shop/domain"
	"github.com/jcmexdev/shop-checkout/internal/shop/ports"
)

// CatalogService manages products. Deletion is soft: deleted products stay
// referenced by past orders but disappear from the catalog and the cart.
type CatalogService struct {
	uow ports.UnitOfWork
}

func NewCatalogService(uow ports.UnitOfWork) *CatalogService {
	return &CatalogService{uow: uow}
}

func (s *CatalogService) Create(ctx context.Context, in domain.NewProduct) (domain.Product, error) {
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}

	p := domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: *in.Description,
		Price:       in.Price.Round(2),
		Quantity:    *in.Quantity,
	}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		taken, err := repos.Products.NameTaken(ctx, p.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return domain.NewValidation(domain.ErrMsgProductNameTaken)
		}
		p, err = repos.Products.Create(ctx, p)
		return err
	})
	if err != nil {
		return domain.Product{}, domain.Wrap(err, "create product")
	}
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, id int64, patch domain.ProductPatch) (domain.Product, error) {
	if err := patch.Validate(); err != nil {
		return domain.Product{}, err
	}

	var updated domain.Product
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		current, err := repos.Products.Get(ctx, id)
		if err != nil {
			return err
		}
		updated = patch.Apply(current)
		if patch.Name != nil {
			taken, err := repos.Products.NameTaken(ctx, updated.Name, id)
			if err != nil {
				return err
			}
			if taken {
				return domain.NewValidation(domain.ErrMsgProductNameTaken)
			}
		}
		return repos.Products.Update(ctx, updated)
	})
	if err != nil {
		return domain.Product{}, domain.Wrap(err, "update product")
	}
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		return repos.Products.SoftDelete(ctx, id)
	})
	return domain.Wrap(err, "delete product")
}

func (s *CatalogService) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		var err error
		p, err = repos.Products.Get(ctx, id)
		return err
	})
	if err != nil {
		return domain.Product{}, domain.Wrap(err, "get product")
	}
	return p, nil
}

// List returns live products, newest first. When q is paginated the page
// must fall within the available pages; an empty catalog still has page 1.
func (s *CatalogService) List(ctx context.Context, q domain.ListQuery) (domain.ProductPage, error) {
	var page domain.ProductPage
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos ports.Repositories) error {
		count, err := repos.Products.Count(ctx, q.Keyword)
		if err != nil {
			return err
		}
		page.Count = count

		limit, offset := 0, 0
		if q.Paginated() {
			pages := max(1, (count+q.Limit-1)/q.Limit)
			if q.Page > pages {
				return domain.NewValidation(domain.ErrMsgInvalidPage)
			}
			limit, offset = q.Limit, (q.Page-1)*q.Limit
		}
		page.Items, err = repos.Products.List(ctx, q.Keyword, limit, offset)
		return err
	})
	if err != nil {
		return domain.ProductPage{}, domain.Wrap(err, "list products")
	}
	return page, nil
}
