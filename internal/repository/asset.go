package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"papertrader/types"

	"github.com/jackc/pgx/v5"
)

// GetAssetByTicker retrieves a types.Asset by its ticker.
func (db *Database) GetAssetByTicker(ctx context.Context, ticker string) (*types.Asset, error) {
	asset, err := db.assets.GetAssetByTicker(ctx, strings.ToUpper(ticker))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ticker %s %w", ticker, ErrAssetNotFound)
		}
		return nil, err
	}
	return toAsset(asset), nil
}

// UpsertAsset creates the asset or refreshes its name and type.
func (db *Database) UpsertAsset(ctx context.Context, ticker, name string, assetType types.AssetType) (*types.Asset, error) {
	if assetType == "" {
		assetType = types.AssetTypeStock
	}
	asset, err := db.assets.UpsertAsset(ctx, upsertAssetParams{
		Ticker: strings.ToUpper(ticker),
		Name:   name,
		Type:   string(assetType),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert asset %s: %w", ticker, err)
	}
	return toAsset(asset), nil
}

func toAsset(a assetRow) *types.Asset {
	return &types.Asset{
		Id:         int(a.ID),
		Ticker:     a.Ticker,
		Name:       a.Name,
		Type:       types.AssetType(a.Type),
		CreatedAt:  a.CreatedAt,
		ModifiedAt: a.ModifiedAt,
	}
}
