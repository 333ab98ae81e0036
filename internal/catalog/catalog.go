// Package catalog loads the product list and each product's build histories
// and resolves which region of a product is shown.
package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"wowtoc/internal/backend"
	"wowtoc/internal/loader"
)

// Source is the subset of the backend client the catalog needs.
type Source interface {
	Products(ctx context.Context) ([]string, error)
	Versions(ctx context.Context, product string) (backend.Histories, error)
}

// LoadProducts starts the one-off catalog fetch. A failure is logged and
// surfaces as an empty catalog.
func LoadProducts(ctx context.Context, src Source) *loader.Task[[]string] {
	return loader.Start(ctx, func(ctx context.Context) ([]string, error) {
		products, err := src.Products(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to load products")
			return []string{}, nil
		}
		return products, nil
	})
}

// ProductView is one product's build browser. Its histories are fetched
// once, when the view is created.
type ProductView struct {
	Product string
	task    *loader.Task[backend.Histories]

	mu       sync.Mutex
	override string
}

func NewProductView(ctx context.Context, src Source, product string) *ProductView {
	return &ProductView{
		Product: product,
		task: loader.Start(ctx, func(ctx context.Context) (backend.Histories, error) {
			h, err := src.Versions(ctx, product)
			if err != nil {
				log.Error().Err(err).Str("product", product).Msg("failed to load versions")
			}
			return h, err
		}),
	}
}

// Task exposes the underlying fetch.
func (v *ProductView) Task() *loader.Task[backend.Histories] { return v.task }

// SetRegion pins the region shown for this product; empty clears the pin.
func (v *ProductView) SetRegion(region string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.override = strings.ToLower(strings.TrimSpace(region))
}

func (v *ProductView) Region() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.override
}

// Resolved is everything needed to draw a loaded product.
type Resolved struct {
	Regions  []string
	Region   string
	Fallback bool // shown region differs from the global one
	Pinned   bool // shown region was chosen for this product
	Current  *backend.BuildRecord
	History  []Slot
}

// Empty reports the legitimate "no builds for this region" outcome.
func (r Resolved) Empty() bool { return r.Current == nil }

// Resolve applies region resolution to loaded histories. A pinned region
// is honored only when the product actually has it.
func (v *ProductView) Resolve(h backend.Histories, global string, depth int) Resolved {
	display, _ := ResolveRegion(h.Regions, global)
	pinned := false
	if pin := v.Region(); pin != "" {
		if _, ok := h.ByRegion[pin]; ok {
			display, pinned = pin, true
		}
	}
	current, rest := Slots(h.History(display), depth)
	return Resolved{
		Regions:  h.Regions,
		Region:   display,
		Fallback: display != global,
		Pinned:   pinned,
		Current:  current,
		History:  rest,
	}
}
