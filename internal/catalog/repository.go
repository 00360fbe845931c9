package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/yashgautam99/jewellry/internal/domain"
)

// VariantReader is the read-only catalogue collaborator. Ids that no longer
// resolve are simply absent from the result; callers decide what that means.
type VariantReader interface {
	GetVariantPricing(ctx context.Context, variantIDs []string) ([]domain.VariantPricing, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetVariantPricing fetches variant and parent-product pricing for all ids in
// a single batched query.
func (r *Repository) GetVariantPricing(ctx context.Context, variantIDs []string) ([]domain.VariantPricing, error) {
	if len(variantIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT v.id, p.base_price, v.price_adjustment, v.inventory_count, v.is_made_to_order
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(variantIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query variant pricing: %w", err)
	}
	defer rows.Close()

	var variants []domain.VariantPricing
	for rows.Next() {
		var v domain.VariantPricing
		if err := rows.Scan(
			&v.VariantID,
			&v.BasePrice,
			&v.PriceAdjustment,
			&v.InventoryCount,
			&v.IsMadeToOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return variants, nil
}
