package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"spot_picker/internal/adapters/observability"
	"spot_picker/internal/domain"
)

// Controller owns one selection and one draft and applies every event to them
// one at a time. Lookups run without the lock; their results are applied only
// if no newer resolution was requested and nothing cleared the selection since.
type Controller struct {
	places *PlaceResolver
	addr   *AddressResolver
	submit *SubmissionWorkflow

	mu      sync.Mutex
	sel     domain.SelectionState
	draft   domain.SubmissionDraft
	latest  uint64
	selRev  uint64 // bumped whenever a resolution replaces the selection
	edits   uint64 // bumped on every draft edit
	touched time.Time
	now     func() time.Time
}

func NewController(p *PlaceResolver, a *AddressResolver, s *SubmissionWorkflow) *Controller {
	c := &Controller{
		places: p,
		addr:   a,
		submit: s,
		draft:  domain.NewDraft(),
		now:    time.Now,
	}
	c.touched = c.now()
	return c
}

type DraftView struct {
	Description string                  `json:"description"`
	Files       []string                `json:"files"`
	Status      domain.SubmissionStatus `json:"status"`
}

// Snapshot is a consistent, copy-only view of the controller state.
type Snapshot struct {
	Selection domain.SelectionState `json:"selection"`
	Draft     DraftView             `json:"draft"`
	Photo     domain.PhotoView      `json:"photo"`
	// CanSubmit is false while nothing is selected or a submission is in flight.
	CanSubmit bool `json:"canSubmit"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Selection: c.sel.Clone(),
		Draft: DraftView{
			Description: c.draft.Description,
			Files:       c.draft.FileNames(),
			Status:      c.draft.Status,
		},
		Photo:     domain.ViewPhoto(c.sel),
		CanSubmit: !c.sel.Empty() && !c.draft.InFlight(),
	}
}

func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.InFlight()
}

// ---- place resolution ----

// SelectPlace resolves id and replaces the selection. A failed lookup leaves the
// selection untouched and reports applied=false without an error.
func (c *Controller) SelectPlace(ctx context.Context, id string) (Snapshot, bool) {
	ticket := c.begin()
	rec, ok := c.places.ResolveByPlaceID(ctx, id)
	if !ok {
		return c.Snapshot(), false
	}
	return c.apply(ticket, *rec, rec.Position())
}

// MapClick handles a click on the map. A click on a native point of interest
// resolves that place; any other click selects a manually chosen location.
// Coordinates outside the valid range are rejected with
// domain.ErrInvalidCoordinates and leave the selection untouched.
func (c *Controller) MapClick(ctx context.Context, click domain.MapClick) (Snapshot, bool, error) {
	if click.PlaceID != "" {
		snap, applied := c.SelectPlace(ctx, click.PlaceID)
		return snap, applied, nil
	}
	if err := validateCoords(click.Lat, click.Lng); err != nil {
		return c.Snapshot(), false, err
	}
	ticket := c.begin()
	pos := domain.LatLng{Lat: click.Lat, Lng: click.Lng}
	addr := c.addr.Resolve(ctx, pos.Lat, pos.Lng)
	snap, applied := c.apply(ticket, domain.ManualPlace(pos, addr), pos)
	return snap, applied, nil
}

func (c *Controller) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest++
	c.touched = c.now()
	return c.latest
}

func (c *Controller) apply(ticket uint64, rec domain.PlaceRecord, marker domain.LatLng) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ticket != c.latest {
		log.Debug().Str("place", rec.Name).Msg("dropping stale resolution")
		observability.ObserveResolution("place", "stale")
		return c.snapshotLocked(), false
	}
	c.sel = c.sel.Select(rec, marker)
	c.selRev++
	return c.snapshotLocked(), true
}

// ---- draft edits ----

func (c *Controller) SetDescription(s string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = c.now()
	c.draft.Description = s
	c.edits++
	return c.snapshotLocked()
}

func (c *Controller) AttachFiles(files ...domain.Attachment) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = c.now()
	c.draft = c.draft.WithFiles(files...)
	c.edits++
	return c.snapshotLocked()
}

func (c *Controller) RemoveFile(i int) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = c.now()
	d, err := c.draft.WithoutFile(i)
	if err != nil {
		return c.snapshotLocked(), err
	}
	c.draft = d
	c.edits++
	return c.snapshotLocked(), nil
}

// ---- photo viewer ----

func (c *Controller) OpenPhoto(i int) (Snapshot, error) {
	return c.movePhoto(func(s domain.SelectionState) (domain.SelectionState, error) { return s.OpenPhotoAt(i) })
}

func (c *Controller) NextPhoto() (Snapshot, error) {
	return c.movePhoto(domain.SelectionState.NextPhoto)
}

func (c *Controller) PrevPhoto() (Snapshot, error) {
	return c.movePhoto(domain.SelectionState.PrevPhoto)
}

func (c *Controller) ClosePhoto() Snapshot {
	s, _ := c.movePhoto(func(s domain.SelectionState) (domain.SelectionState, error) { return s.ClosePhoto(), nil })
	return s
}

func (c *Controller) movePhoto(f func(domain.SelectionState) (domain.SelectionState, error)) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched = c.now()
	next, err := f(c.sel)
	c.sel = next
	return c.snapshotLocked(), err
}

// ---- submission ----

// Submit sends the current selection and draft once. While a submission is in
// flight further calls fail with domain.ErrSubmissionInFlight and send nothing.
// Success clears the selection and draft that were sent; a selection or edit made
// while the request was in flight is kept. A remote failure keeps both for a retry.
func (c *Controller) Submit(ctx context.Context, auth domain.AuthContext) (domain.SubmitResult, error) {
	c.mu.Lock()
	c.touched = c.now()
	if c.draft.InFlight() {
		c.mu.Unlock()
		return domain.SubmitResult{}, domain.ErrSubmissionInFlight
	}
	sel, draft := c.sel.Clone(), c.draft.Clone()
	latest, selRev, edits := c.latest, c.selRev, c.edits
	if err := c.submit.Validate(sel, draft, auth); err != nil {
		c.mu.Unlock()
		return domain.SubmitResult{}, err
	}
	c.draft.Status = domain.InFlight()
	c.mu.Unlock()

	res, err := c.submit.Submit(ctx, sel, draft, auth)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		reason := err.Error()
		var re *domain.RemoteError
		if errors.As(err, &re) {
			reason = re.Message
		}
		c.draft.Status = domain.Failed(reason)
		return domain.SubmitResult{}, err
	}
	if c.selRev == selRev {
		c.sel = c.sel.Clear()
	}
	if c.latest == latest {
		// drop lookups that were started before the submit
		c.latest++
	}
	if c.edits == edits {
		c.draft = domain.NewDraft()
	} else {
		c.draft.Status = domain.Idle()
	}
	return res, nil
}
