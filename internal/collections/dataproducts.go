package collections

import (
	"context"

	v1alpha1 "github.com/eventcatalog/catalog-engine/api/v1alpha1"
	"github.com/eventcatalog/catalog-engine/internal/catalog"
	"github.com/eventcatalog/catalog-engine/internal/resolver"
	"github.com/eventcatalog/catalog-engine/internal/store"
)

// GetDataProducts returns visible data products with inputs and outputs
// resolved.
func (e *Enricher) GetDataProducts(ctx context.Context, opts Options) ([]DataProduct, error) {
	res, err := e.dataProducts(ctx, opts)
	return res.Items, err
}

func (e *Enricher) dataProducts(ctx context.Context, opts Options) (Result[DataProduct], error) {
	return enrich(ctx, e, v1alpha1.CollectionDataProducts, versionsVariant(opts.CurrentOnly), func(ctx context.Context, diag *resolver.Diagnostics) ([]DataProduct, error) {
		snap, err := store.Fetch(ctx, e.repo, catalog.KindDataProduct, catalog.KindEvent, catalog.KindCommand, catalog.KindQuery)
		if err != nil {
			return nil, err
		}

		messages := resolver.Visible(snap.Messages())
		versions := resolver.NewVersionedMap(snap.DataProducts)

		out := make([]DataProduct, 0, len(snap.DataProducts))
		for _, dp := range targets(snap.DataProducts, opts.CurrentOnly) {
			from := dp.Ref()
			out = append(out, DataProduct{
				DataProduct: dp,
				History:     history(versions, dp.Resource),
				Resolved: DataProductRelations{
					Inputs:  resolver.HydrateAll(messages, dp.Inputs, diag.Miss(from, "inputs")),
					Outputs: resolver.HydrateAll(messages, dp.Outputs, diag.Miss(from, "outputs")),
				},
			})
		}
		sortByName(out)
		return out, nil
	})
}
