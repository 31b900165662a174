package services

import (
	"context"
	"time"

	"eevy/internal/store"
	"eevy/internal/timeutil"
)

// Lookahead is the implicit window applied when a caller asks what is
// available "now": a charger about to be occupied in the next few minutes
// is not worth driving to.
const Lookahead = 5 * time.Minute

type AvailabilityService struct {
	chargerStore     ChargerLister
	reservationStore BookedLister
	now              func() time.Time
}

type ChargerLister interface {
	ListListed(ctx context.Context) ([]store.Charger, error)
}

type BookedLister interface {
	BookedChargerIDs(ctx context.Context, start, end time.Time) ([]string, error)
}

func NewAvailabilityService(chargerStore ChargerLister, reservationStore BookedLister) *AvailabilityService {
	return &AvailabilityService{
		chargerStore:     chargerStore,
		reservationStore: reservationStore,
		now:              time.Now,
	}
}

// AvailableCharger pairs a listed charger with the free-for-window
// predicate. Charger.Available is the owner's listed flag; Free is whether
// the queried window is clear of blocking reservations. The two are
// distinct signals and both travel to the caller.
type AvailableCharger struct {
	store.Charger
	Free bool `json:"free"`
}

// ListAvailable reports the listed chargers that are free right now,
// where "now" covers the lookahead window.
func (s *AvailabilityService) ListAvailable(ctx context.Context) ([]AvailableCharger, error) {
	start := s.now()
	return s.listForWindow(ctx, timeutil.Window{Start: start, End: start.Add(Lookahead)})
}

// ListAvailableWindow reports the listed chargers that are free for an
// explicit window.
func (s *AvailabilityService) ListAvailableWindow(ctx context.Context, w timeutil.Window) ([]AvailableCharger, error) {
	return s.listForWindow(ctx, w)
}

func (s *AvailabilityService) listForWindow(ctx context.Context, w timeutil.Window) ([]AvailableCharger, error) {
	listed, err := s.chargerStore.ListListed(ctx)
	if err != nil {
		return nil, err
	}
	bookedIDs, err := s.reservationStore.BookedChargerIDs(ctx, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	booked := make(map[string]struct{}, len(bookedIDs))
	for _, id := range bookedIDs {
		booked[id] = struct{}{}
	}
	results := make([]AvailableCharger, 0, len(listed))
	for _, charger := range listed {
		_, taken := booked[charger.ID]
		results = append(results, AvailableCharger{Charger: charger, Free: !taken})
	}
	return results, nil
}
