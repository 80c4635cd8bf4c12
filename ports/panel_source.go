package ports

import (
	"context"

	"stabcast/domain/panel"
)

// PanelSource supplies raw country-year observations to the panel store.
// Implementations: excel/csv file readers, synthetic test generators. How
// the rows were acquired is not this system's concern; only the shape is.
type PanelSource interface {
	// ReadObservations returns every raw observation, in any order.
	// Key uniqueness is enforced by the store, not the source.
	ReadObservations(ctx context.Context) ([]panel.Observation, error)
}
