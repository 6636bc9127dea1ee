package service

import (
	"context"

	"reelsmith/internal/dto"
	"reelsmith/internal/selection"
	"reelsmith/internal/types"

	"github.com/samber/lo"
)

// ListAssets returns the clip bank with fingerprints and, when an owner is
// given, per-asset usage flags.
func (s *Service) ListAssets(req dto.ListAssetsReq) (*dto.ListAssetsResData, error) {
	ctx := context.Background()

	prefix := s.assetPrefix
	if req.Niche != "" {
		prefix = s.assetPrefix + selection.SlugNiche(req.Niche) + "/"
	}
	assets, err := s.Store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	// Unknown niche folder: fall back to the whole bank, matching the
	// selection engine's behavior.
	nicheName := req.Niche
	if len(assets) == 0 && req.Niche != "" {
		if assets, err = s.Store.List(ctx, s.assetPrefix); err != nil {
			return nil, err
		}
		nicheName = ""
	}

	if req.Keyword != "" {
		matched := lo.Filter(assets, func(a types.Asset, _ int) bool {
			return selection.MatchKeyword(req.Keyword, a.Key, nicheName)
		})
		// Nothing carries the keyword: drop the filter rather than
		// return an empty listing, like the selection engine does.
		if len(matched) > 0 {
			assets = matched
		}
	}

	used := map[string]struct{}{}
	if req.UserId != "" && req.AccountId != "" {
		if used, err = s.usedSet(req.UserId, req.AccountId); err != nil {
			return nil, err
		}
	}

	items := make([]dto.AssetItem, 0, len(assets))
	for _, a := range assets {
		fp := selection.Fingerprint(a)
		_, isUsed := used[fp]
		items = append(items, dto.AssetItem{
			Asset:       a,
			Fingerprint: fp,
			Used:        isUsed,
		})
	}
	return &dto.ListAssetsResData{Assets: items}, nil
}
