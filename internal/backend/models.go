package backend

// BuildRecord is one observed build for a product in one region.
type BuildRecord struct {
	VersionName     string `json:"version_name"`
	BuildID         string `json:"build_id"`
	BuildConfigHash string `json:"build_config"`
}

// ShortConfig is the first 8 characters of the build config hash.
func (b BuildRecord) ShortConfig() string {
	if len(b.BuildConfigHash) <= 8 {
		return b.BuildConfigHash
	}
	return b.BuildConfigHash[:8]
}

// Histories holds every region's build history for one product.
// Regions keeps the order in which the backend reported them; each
// history is newest-first.
type Histories struct {
	Regions  []string
	ByRegion map[string][]BuildRecord
}

// History returns the build history of region, or nil.
func (h Histories) History(region string) []BuildRecord {
	return h.ByRegion[region]
}

// versionRow is the flat record served by GET /api/v1/versions/{product}.
type versionRow struct {
	Region       string `json:"Region"`
	VersionsName string `json:"VersionsName"`
	BuildID      string `json:"BuildId"`
	BuildConfig  string `json:"BuildConfig"`
}

// groupByRegion folds flat rows into per-region histories, keeping
// first-seen region order and the row order inside each region.
func groupByRegion(rows []versionRow) Histories {
	h := Histories{ByRegion: map[string][]BuildRecord{}}
	for _, r := range rows {
		if r.Region == "" {
			continue
		}
		if _, seen := h.ByRegion[r.Region]; !seen {
			h.Regions = append(h.Regions, r.Region)
		}
		h.ByRegion[r.Region] = append(h.ByRegion[r.Region], BuildRecord{
			VersionName:     r.VersionsName,
			BuildID:         r.BuildID,
			BuildConfigHash: r.BuildConfig,
		})
	}
	return h
}
