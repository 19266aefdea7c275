package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"fusion/internal/domain/model"
	repo "fusion/internal/repository"
	"fusion/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newProductUsecase(products *productRepoMock, audits *memAudits) *usecase.ProductUsecase {
	tx := &fakeTxManager{repos: &fakeTxRepos{products: products, audits: audits}}
	return usecase.NewProductUsecase(tx, products, &seqIDs{}, fixedClock{testNow})
}

func TestProductList_DefaultsAndFilters(t *testing.T) {
	products := &productRepoMock{}
	products.On("List", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return q.Page == 1 && q.Limit == 10 && q.Category == model.CategoryMen && len(q.Brands) == 1
	})).Return([]model.Product{{ID: "p1"}}, int64(11), nil)

	page, err := newProductUsecase(products, &memAudits{}).List(context.Background(), usecase.ListProductsInput{
		Category: "Men",
		Brands:   []string{"Nike"},
	})
	require.NoError(t, err)
	assert.Len(t, page.Products, 1)
	assert.Equal(t, int64(2), page.Pagination.TotalPages)
	assert.Equal(t, 10, page.Pagination.PageSize)
}

func TestProductList_Validation(t *testing.T) {
	uc := newProductUsecase(&productRepoMock{}, &memAudits{})
	cases := []usecase.ListProductsInput{
		{Page: -1},
		{Limit: 500},
		{Category: "Pets"},
		{MinPrice: ptr(-1.0)},
		{MinPrice: ptr(10.0), MaxPrice: ptr(5.0)},
	}
	for _, in := range cases {
		_, err := uc.List(context.Background(), in)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err), "%+v", in)
	}
}

func TestProductCreate_RequiredFields(t *testing.T) {
	products := &productRepoMock{}
	uc := newProductUsecase(products, &memAudits{})

	_, err := uc.Create(context.Background(), usecase.ProductInput{Name: ptr("Tee")})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Equal(t, "Missing required fields: description, price, category, stock, images, brand", messageOf(t, err))

	products.On("Create", mock.Anything, mock.AnythingOfType("model.Product")).Return(nil)
	p, err := uc.Create(context.Background(), usecase.ProductInput{
		Name:        ptr(" Tee "),
		Description: ptr("cotton"),
		Price:       ptr(499.0),
		Sizes:       []string{"M"},
		Category:    ptr("Men"),
		Stock:       ptr(int64(5)),
		Images:      []string{"a"},
		Brand:       ptr("Nike"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Tee", p.Name)
	assert.NotEmpty(t, p.ID)

	_, err = uc.Create(context.Background(), usecase.ProductInput{
		Name:        ptr("Tee"),
		Description: ptr("cotton"),
		Price:       ptr(1.0),
		Category:    ptr("Men"),
		Stock:       ptr(int64(1)),
		Images:      []string{"a"},
		Brand:       ptr("Adidas"),
	})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestProductUpdate_StockChangeIsAudited(t *testing.T) {
	products := &productRepoMock{}
	audits := &memAudits{}
	products.On("FindByID", mock.Anything, "p1").Return(model.Product{ID: "p1", Name: "Tee", Price: 10, Stock: 3}, nil)
	products.On("Update", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Price == 12 && p.Stock == 3
	})).Return(nil).Once()
	products.On("Update", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Stock == 9
	})).Return(nil).Once()

	uc := newProductUsecase(products, audits)

	p, err := uc.Update(context.Background(), "admin", "p1", usecase.ProductInput{Price: ptr(12.0)})
	require.NoError(t, err)
	assert.Equal(t, 12.0, p.Price)
	assert.Empty(t, audits.logs)

	_, err = uc.Update(context.Background(), "admin", "p1", usecase.ProductInput{Stock: ptr(int64(9))})
	require.NoError(t, err)
	require.Len(t, audits.logs, 1)
	assert.Equal(t, model.AuditActionUpdateStock, audits.logs[0].Action)
	assert.Equal(t, `{"stock":3}`, audits.logs[0].BeforeJSON)

	_, err = uc.Update(context.Background(), "admin", "p1", usecase.ProductInput{Price: ptr(-1.0)})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestProductUpdateStock(t *testing.T) {
	products := &productRepoMock{}
	audits := &memAudits{}
	products.On("FindByID", mock.Anything, "p1").Return(model.Product{ID: "p1", Stock: 3}, nil)
	products.On("FindByID", mock.Anything, "nope").Return(model.Product{}, repo.ErrNotFound)
	products.On("SetStock", mock.Anything, "p1", int64(20)).Return(nil)

	uc := newProductUsecase(products, audits)

	p, err := uc.UpdateStock(context.Background(), "admin", "p1", 20, "restock")
	require.NoError(t, err)
	assert.Equal(t, int64(20), p.Stock)
	require.Len(t, audits.logs, 1)
	assert.Equal(t, `{"reason":"restock","stock":20}`, audits.logs[0].AfterJSON)

	_, err = uc.UpdateStock(context.Background(), "admin", "p1", -1, "x")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	_, err = uc.UpdateStock(context.Background(), "admin", "p1", 1, " ")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	_, err = uc.UpdateStock(context.Background(), "admin", "nope", 1, "x")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestProductGetAndDelete_NotFound(t *testing.T) {
	products := &productRepoMock{}
	products.On("FindByID", mock.Anything, "nope").Return(model.Product{}, repo.ErrNotFound)
	products.On("Delete", mock.Anything, "nope").Return(repo.ErrNotFound)
	uc := newProductUsecase(products, &memAudits{})

	_, err := uc.Get(context.Background(), "nope")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	err = uc.Delete(context.Background(), "nope")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
