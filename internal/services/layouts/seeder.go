package layouts

import (
	"context"

	"github.com/makersimpulse/layoutengine/internal/layout"
	"github.com/makersimpulse/layoutengine/internal/storage"
	"github.com/makersimpulse/layoutengine/pkg/logger"
)

// Seeder guarantees that every core slot has an active layout. It is safe to
// run on every startup: slots that already hold an active record are left
// alone.
type Seeder struct {
	store storage.LayoutStore
	log   *logger.Logger
}

// NewSeeder constructs a seeder over the given store.
func NewSeeder(store storage.LayoutStore, log *logger.Logger) *Seeder {
	if log == nil {
		log = logger.NewDefault("layout-seeder")
	}
	return &Seeder{store: store, log: log}
}

// EnsureDefaults walks the core slots and creates the hard-coded default for
// every slot without an active layout. Failures on one slot are logged and do
// not stop the remaining slots; the return value is the number of layouts
// created.
func (s *Seeder) EnsureDefaults(ctx context.Context) int {
	created := 0
	for _, slot := range layout.CoreSlots() {
		def, ok := layout.DefaultForSlot(slot)
		if !ok {
			s.log.Warnf("no default registered for slot %s/%s", slot.Type, slot.Scope)
			continue
		}

		skel := layout.ToSkeleton(def)
		skel.IsActive = true
		_, inserted, err := s.store.EnsureLayout(ctx, skel)
		if err != nil {
			s.log.WithError(err).Errorf("seeding %s/%s failed", slot.Type, slot.Scope)
			continue
		}
		if inserted {
			s.log.Infof("seeded default layout for %s/%s", slot.Type, slot.Scope)
			created++
		}
	}
	return created
}
