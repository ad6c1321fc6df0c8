package catalog

import (
	"github.com/orbitdeck/orbitdeck/pkg/vec"
)

// Drift is a minimal force integrator for standalone operation: forces
// displace items directly, scaled by a mobility factor per tick. A real
// deployment replaces it with the visualization layer's physics engine.
type Drift struct {
	catalog  *Catalog
	mobility float64
}

// NewDrift creates a drift integrator over the catalog.
func NewDrift(c *Catalog, mobility float64) *Drift {
	return &Drift{catalog: c, mobility: mobility}
}

// ApplyForce displaces the item along the force vector. Unknown IDs are
// ignored.
func (d *Drift) ApplyForce(itemID string, force vec.V3) {
	pos, ok := d.catalog.Position(itemID)
	if !ok {
		return
	}
	// The item can vanish between the two calls if the content layer
	// removes it; the force is simply lost.
	_ = d.catalog.SetPosition(itemID, pos.Add(force.Scale(d.mobility)))
}
