package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/internal/domain"
	"github.com/uriel-reyes/sellertools-sub000/internal/seq"
	"github.com/uriel-reyes/sellertools-sub000/pkg/errors"
)

// ProductPage is one fetched page of products.
type ProductPage struct {
	Products []domain.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"perPage"`
}

// SearchResult is the committed outcome of a catalog search.
type SearchResult struct {
	Query    string           `json:"query"`
	Products []domain.Product `json:"products"`
	Total    int64            `json:"total"`
}

type ProductService struct {
	client *ctp.Client
	logger *zap.Logger

	// Latest-wins guard for the search box: a slower in-flight search must
	// not overwrite the results of one issued after it.
	tracker seq.Tracker
	mu      sync.Mutex
	search  *SearchResult
}

// NewProductService creates a new product service
func NewProductService(client *ctp.Client, logger *zap.Logger) *ProductService {
	return &ProductService{client: client, logger: logger}
}

// Selection resolves the store's product selection. The selection key is the
// store key by convention.
func (s *ProductService) Selection(ctx context.Context, storeKey string) (*domain.ProductSelection, error) {
	resp, err := s.client.Execute(ctx, ctp.ProductSelectionQuery, map[string]interface{}{"key": storeKey})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "productSelection", Err: err}
	}

	var result struct {
		ProductSelection *struct {
			ID      string `json:"id"`
			Version int64  `json:"version"`
			Key     string `json:"key"`
			Name    string `json:"name"`
		} `json:"productSelection"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode product selection: %w", err)
	}
	if result.ProductSelection == nil {
		return nil, &errors.ErrNotFound{Resource: "product selection", ID: storeKey}
	}
	r := result.ProductSelection
	return &domain.ProductSelection{ID: r.ID, Version: r.Version, Key: r.Key, Name: r.Name}, nil
}

// ListStoreProducts fetches a page of the store's visible catalog, i.e. the
// products assigned to its selection.
func (s *ProductService) ListStoreProducts(ctx context.Context, storeKey string, opts ListOptions) (*ProductPage, error) {
	opts = opts.Normalize()
	resp, err := s.client.Execute(ctx, ctp.SelectionProductsQuery, map[string]interface{}{
		"key":    storeKey,
		"limit":  opts.PerPage,
		"offset": opts.Offset(),
	})
	if err != nil {
		return nil, &errors.ErrRemote{Operation: "productSelectionAssignments", Err: err}
	}

	var result struct {
		ProductSelectionAssignments struct {
			Total   int64 `json:"total"`
			Results []struct {
				Product struct {
					ID         string `json:"id"`
					Version    int64  `json:"version"`
					MasterData struct {
						Current struct {
							Name          string        `json:"name"`
							Slug          string        `json:"slug"`
							MasterVariant variantFields `json:"masterVariant"`
						} `json:"current"`
						Published bool `json:"published"`
					} `json:"masterData"`
				} `json:"product"`
			} `json:"results"`
		} `json:"productSelectionAssignments"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode selection products: %w", err)
	}

	page := &ProductPage{
		Products: make([]domain.Product, 0, len(result.ProductSelectionAssignments.Results)),
		Total:    result.ProductSelectionAssignments.Total,
		Page:     opts.Page,
		PerPage:  opts.PerPage,
	}
	for _, r := range result.ProductSelectionAssignments.Results {
		p := r.Product
		page.Products = append(page.Products, domain.Product{
			ID:            p.ID,
			Version:       p.Version,
			Name:          p.MasterData.Current.Name,
			Slug:          p.MasterData.Current.Slug,
			ImageURL:      p.MasterData.Current.MasterVariant.firstImage(),
			MasterVariant: p.MasterData.Current.MasterVariant.toDomain(),
			Published:     p.MasterData.Published,
		})
	}
	return page, nil
}

// Search free-text searches the master catalog. An empty query falls back to
// the store's paginated catalog fetch. The returned bool reports whether the
// result was committed as the latest search; stale completions are discarded.
func (s *ProductService) Search(ctx context.Context, storeKey, text string, opts ListOptions) (*SearchResult, bool, error) {
	opts = opts.Normalize()
	token := s.tracker.Begin()

	if text == "" {
		page, err := s.ListStoreProducts(ctx, storeKey, opts)
		if err != nil {
			return nil, false, err
		}
		result := &SearchResult{Query: "", Products: page.Products, Total: page.Total}
		return result, s.commitSearch(token, result), nil
	}

	resp, err := s.client.Execute(ctx, ctp.ProductSearchQuery, map[string]interface{}{
		"text":   text,
		"limit":  opts.PerPage,
		"offset": opts.Offset(),
	})
	if err != nil {
		return nil, false, &errors.ErrRemote{Operation: "productProjectionSearch", Err: err}
	}

	var result struct {
		ProductProjectionSearch struct {
			Total   int64 `json:"total"`
			Results []struct {
				ID            string        `json:"id"`
				Version       int64         `json:"version"`
				Name          string        `json:"name"`
				Slug          string        `json:"slug"`
				Published     bool          `json:"published"`
				MasterVariant variantFields `json:"masterVariant"`
			} `json:"results"`
		} `json:"productProjectionSearch"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode product search: %w", err)
	}

	search := &SearchResult{Query: text, Total: result.ProductProjectionSearch.Total}
	for _, r := range result.ProductProjectionSearch.Results {
		search.Products = append(search.Products, domain.Product{
			ID:            r.ID,
			Version:       r.Version,
			Name:          r.Name,
			Slug:          r.Slug,
			ImageURL:      r.MasterVariant.firstImage(),
			MasterVariant: r.MasterVariant.toDomain(),
			Published:     r.Published,
		})
	}
	return search, s.commitSearch(token, search), nil
}

func (s *ProductService) commitSearch(token uint64, result *SearchResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Commit(token, func() { s.search = result })
}

// SearchSnapshot returns the latest committed search result, if any.
func (s *ProductService) SearchSnapshot() *SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// AddToSelection adds a product to the store's visible catalog, guarded by
// the selection's version.
func (s *ProductService) AddToSelection(ctx context.Context, selection *domain.ProductSelection, productID string) (int64, error) {
	actions := []map[string]interface{}{
		{"addProduct": ctp.SelectionAddProductAction{Product: ctp.ProductRefInput{ID: productID}}},
	}
	return s.updateSelection(ctx, selection, actions)
}

// RemoveFromSelection removes a product from the store's visible catalog.
func (s *ProductService) RemoveFromSelection(ctx context.Context, selection *domain.ProductSelection, productID string) (int64, error) {
	actions := []map[string]interface{}{
		{"removeProduct": ctp.SelectionRemoveProductAction{Product: ctp.ProductRefInput{ID: productID}}},
	}
	return s.updateSelection(ctx, selection, actions)
}

func (s *ProductService) updateSelection(ctx context.Context, selection *domain.ProductSelection, actions []map[string]interface{}) (int64, error) {
	resp, err := s.client.Execute(ctx, ctp.UpdateProductSelectionMutation, map[string]interface{}{
		"id":      selection.ID,
		"version": selection.Version,
		"actions": actions,
	})
	if err != nil {
		return 0, remoteOrConflict("updateProductSelection", "product selection", selection.ID, selection.Version, err)
	}

	var result struct {
		UpdateProductSelection struct {
			ID      string `json:"id"`
			Version int64  `json:"version"`
		} `json:"updateProductSelection"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return 0, fmt.Errorf("failed to decode selection update: %w", err)
	}
	return result.UpdateProductSelection.Version, nil
}

// variantFields is the shared variant shape across product queries.
type variantFields struct {
	ID     int64  `json:"id"`
	SKU    string `json:"sku"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Prices []struct {
		ID      string       `json:"id"`
		Value   domain.Money `json:"value"`
		Channel *struct {
			Key string `json:"key"`
		} `json:"channel"`
	} `json:"prices"`
}

func (v variantFields) firstImage() string {
	if len(v.Images) == 0 {
		return ""
	}
	return v.Images[0].URL
}

func (v variantFields) toDomain() domain.ProductVariant {
	variant := domain.ProductVariant{ID: v.ID, SKU: v.SKU}
	for _, p := range v.Prices {
		price := domain.Price{ID: p.ID, Value: p.Value}
		if p.Channel != nil {
			price.ChannelKey = p.Channel.Key
		}
		variant.Prices = append(variant.Prices, price)
	}
	return variant
}
