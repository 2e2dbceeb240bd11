package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"papertrader/types"

	"github.com/jackc/pgx/v5"
)

type mockAssetsRepository struct {
	sqlError error
	upserted []upsertAssetParams
}

func TestDatabase_GetAssetByTicker(t *testing.T) {
	type args struct {
		ticker string
	}
	tests := []struct {
		name    string
		args    args
		want    *types.Asset
		sqlErr  error
		wantErr error
	}{
		{"should throw ErrAssetNotFound", args{"AAPL"}, nil, pgx.ErrNoRows, ErrAssetNotFound},
		{"should pass through other errors", args{"AAPL"}, nil, errors.New("conn refused"), nil},
		{"should return asset", args{"aapl"}, &types.Asset{Ticker: "AAPL", Id: 1}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &Database{
				assets: &mockAssetsRepository{
					sqlError: tt.sqlErr,
				},
			}
			got, err := db.GetAssetByTicker(context.Background(), tt.args.ticker)
			if tt.sqlErr != nil {
				if err == nil {
					t.Fatalf("GetAssetByTicker() expected error")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("GetAssetByTicker() error = %v, wantErr %v", err, tt.wantErr)
				}
				if tt.wantErr == nil && errors.Is(err, ErrAssetNotFound) {
					t.Errorf("GetAssetByTicker() error = %v, should not be ErrAssetNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetAssetByTicker() unexpected error = %v", err)
			}
			if got.Ticker != tt.want.Ticker {
				t.Errorf("GetAssetByTicker() ticker = %v, want %v", got, tt.want)
			}
			if got.Id != tt.want.Id {
				t.Errorf("GetAssetByTicker() id = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDatabase_UpsertAsset(t *testing.T) {
	mock := &mockAssetsRepository{}
	db := &Database{assets: mock}

	got, err := db.UpsertAsset(context.Background(), "msft", "Microsoft", "")
	if err != nil {
		t.Fatalf("UpsertAsset() error = %v", err)
	}
	if got.Ticker != "MSFT" || got.Type != types.AssetTypeStock {
		t.Errorf("UpsertAsset() = %+v", got)
	}
	if len(mock.upserted) != 1 || mock.upserted[0].Type != "STOCK" {
		t.Errorf("UpsertAsset() params = %+v", mock.upserted)
	}
}

func (m *mockAssetsRepository) GetAssetByTicker(_ context.Context, ticker string) (assetRow, error) {
	if m.sqlError != nil {
		return assetRow{}, m.sqlError
	}
	curTime := time.UnixMilli(1)
	return assetRow{
		ID:         1,
		Ticker:     ticker,
		Name:       "Apple",
		Type:       string(types.AssetTypeStock),
		CreatedAt:  curTime,
		ModifiedAt: curTime,
	}, nil
}

func (m *mockAssetsRepository) UpsertAsset(_ context.Context, arg upsertAssetParams) (assetRow, error) {
	if m.sqlError != nil {
		return assetRow{}, m.sqlError
	}
	m.upserted = append(m.upserted, arg)
	return assetRow{ID: 7, Ticker: arg.Ticker, Name: arg.Name, Type: arg.Type}, nil
}
