package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dokanhq/dokan-api/internal/domain/settings"
)

const (
	getDeliverySQL = `SELECT inside_dhaka, outside_dhaka, cod_fee FROM delivery_settings WHERE id = 1`

	saveDeliverySQL = `INSERT INTO delivery_settings (id, inside_dhaka, outside_dhaka, cod_fee)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			inside_dhaka = EXCLUDED.inside_dhaka,
			outside_dhaka = EXCLUDED.outside_dhaka,
			cod_fee = EXCLUDED.cod_fee`
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository implements settings.Repository on the single-row
// delivery_settings table. The migration seeds the defaults, so reads always
// find a row.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Delivery returns the configured delivery charges.
func (r *SettingsRepository) Delivery(ctx context.Context) (settings.Delivery, error) {
	var d settings.Delivery
	err := r.pool.QueryRow(ctx, getDeliverySQL).Scan(&d.InsideDhaka, &d.OutsideDhaka, &d.CODFee)
	if err != nil {
		return settings.Delivery{}, fmt.Errorf("loading delivery settings: %w", err)
	}
	return d, nil
}

// SaveDelivery replaces the delivery charges.
func (r *SettingsRepository) SaveDelivery(ctx context.Context, d settings.Delivery) error {
	_, err := r.pool.Exec(ctx, saveDeliverySQL, d.InsideDhaka, d.OutsideDhaka, d.CODFee)
	if err != nil {
		return fmt.Errorf("saving delivery settings: %w", err)
	}
	return nil
}
