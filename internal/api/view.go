package api

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"wowtoc/internal/backend"
	"wowtoc/internal/catalog"
	"wowtoc/internal/loader"
	"wowtoc/internal/session"
	"wowtoc/internal/toc"
)

// knownRegions are offered in the global region selector.
var knownRegions = []string{"us", "eu", "kr", "tw", "cn"}

type pageData struct {
	Interface      string
	GlobalRegion   string
	RegionChoices  []string
	CatalogLoading bool
	Pending        bool
	Products       []productData
}

type productData struct {
	Product      string
	GlobalRegion string
	Loading      bool
	Err          string
	Regions      []string
	Region       string
	Fallback     bool
	Pinned       bool
	Current      *cardData
	History      []*cardData // nil entries are awaiting placeholders
}

type cardData struct {
	Product   string
	Region    string
	Version   string
	BuildID   string
	Config    string
	Interface string
	Selected  bool
}

// buildPage waits (bounded by ctx) for the session's pending fetches and
// snapshots everything the template needs.
func (h *Handler) buildPage(ctx context.Context, s *session.Session) pageData {
	global := s.GlobalRegion()
	page := pageData{
		Interface:     s.Selection.Display(),
		GlobalRegion:  global,
		RegionChoices: knownRegions,
	}
	if !slices.Contains(page.RegionChoices, global) {
		page.RegionChoices = append(slices.Clone(knownRegions), global)
	}

	cat := s.Catalog.Wait(ctx)
	if cat.Phase == loader.Loading {
		page.CatalogLoading = true
		page.Pending = true
		return page
	}

	views := make([]*catalog.ProductView, len(cat.Data))
	var g errgroup.Group
	for i, product := range cat.Data {
		v, _ := s.View(product)
		views[i] = v
		g.Go(func() error {
			v.Task().Wait(ctx)
			return nil
		})
	}
	_ = g.Wait()

	for i, product := range cat.Data {
		pd := productData{Product: product, GlobalRegion: global}
		st := views[i].Task().State()
		switch st.Phase {
		case loader.Loading:
			pd.Loading = true
			page.Pending = true
		case loader.Failed:
			pd.Err = st.Err.Error()
		default:
			r := views[i].Resolve(st.Data, global, h.Depth)
			pd.Regions = r.Regions
			pd.Region = r.Region
			pd.Fallback = r.Fallback
			pd.Pinned = r.Pinned
			if !r.Empty() {
				pd.Current = h.card(s, product, r.Region, *r.Current)
				for _, slot := range r.History {
					if slot.Awaiting() {
						pd.History = append(pd.History, nil)
						continue
					}
					pd.History = append(pd.History, h.card(s, product, r.Region, *slot.Build))
				}
			}
		}
		page.Products = append(page.Products, pd)
	}
	return page
}

func (h *Handler) card(s *session.Session, product, region string, b backend.BuildRecord) *cardData {
	return &cardData{
		Product:   product,
		Region:    region,
		Version:   b.VersionName,
		BuildID:   b.BuildID,
		Config:    b.ShortConfig(),
		Interface: toc.Interface(b.VersionName),
		Selected:  s.Selection.Selected(toc.CardID(product, region, b.VersionName)),
	}
}
