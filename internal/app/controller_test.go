package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spot_picker/internal/app"
	"spot_picker/internal/domain"
)

type rig struct {
	places *fakePlaces
	geo    *mockGeocoder
	spots  *fakeSpots
	ctl    *app.Controller
}

func newRig() *rig {
	r := &rig{places: newFakePlaces(), geo: &mockGeocoder{}, spots: &fakeSpots{}}
	r.places.details["louvre"] = louvreDetails()
	r.places.details["eiffel"] = domain.PlaceDetails{PlaceID: "eiffel", Name: "Eiffel Tower", Lat: 48.8584, Lng: 2.2945}
	r.ctl = app.NewController(
		app.NewPlaceResolver(r.places, nil, time.Minute, 400),
		app.NewAddressResolver(r.geo),
		app.NewSubmissionWorkflow(r.spots, nil, nil),
	)
	return r
}

var user = domain.AuthContext{Token: "opaque"}

func TestController_ManualClick(t *testing.T) {
	r := newRig()
	r.geo.On("ReverseGeocode", mock.Anything, 48.85, 2.35).Return("10 Rue de Rivoli", nil).Once()

	snap, applied, err := r.ctl.MapClick(context.Background(), domain.MapClick{Lat: 48.85, Lng: 2.35})
	require.NoError(t, err)
	require.True(t, applied)

	p := snap.Selection.Place
	require.NotNil(t, p)
	assert.Equal(t, domain.ManualPlaceName, p.Name)
	assert.Equal(t, "10 Rue de Rivoli", p.Address)
	assert.Equal(t, 48.85, p.Lat)
	assert.Equal(t, 2.35, p.Lng)
	assert.Empty(t, p.PhotoReferences)
	assert.Empty(t, p.PhotoURLs)
	assert.Equal(t, &domain.LatLng{Lat: 48.85, Lng: 2.35}, snap.Selection.Marker)
	assert.True(t, snap.CanSubmit)
	r.geo.AssertExpectations(t)
}

func TestController_PlaceClickSkipsGeocoder(t *testing.T) {
	r := newRig()

	snap, applied, err := r.ctl.MapClick(context.Background(), domain.MapClick{Lat: 1, Lng: 1, PlaceID: "louvre"})
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, "Louvre Museum", snap.Selection.Place.Name)
	// the marker sits on the place, not on the click
	assert.Equal(t, &domain.LatLng{Lat: 48.8606, Lng: 2.3376}, snap.Selection.Marker)
	r.geo.AssertNotCalled(t, "ReverseGeocode", mock.Anything, mock.Anything, mock.Anything)
}

func TestController_ManualClickOutOfRange(t *testing.T) {
	r := newRig()
	_, applied := r.ctl.SelectPlace(context.Background(), "eiffel")
	require.True(t, applied)

	for _, click := range []domain.MapClick{{Lat: 100, Lng: 2}, {Lat: 10, Lng: -181}} {
		snap, applied, err := r.ctl.MapClick(context.Background(), click)
		require.ErrorIs(t, err, domain.ErrInvalidCoordinates)
		assert.True(t, domain.IsValidation(err))
		assert.False(t, applied)
		assert.Equal(t, "Eiffel Tower", snap.Selection.Place.Name)
	}
	r.geo.AssertNotCalled(t, "ReverseGeocode", mock.Anything, mock.Anything, mock.Anything)

	// a rejected click does not invalidate a later lookup
	snap, applied := r.ctl.SelectPlace(context.Background(), "louvre")
	assert.True(t, applied)
	assert.Equal(t, "Louvre Museum", snap.Selection.Place.Name)
}

func TestController_LookupFailureKeepsSelection(t *testing.T) {
	r := newRig()
	_, applied := r.ctl.SelectPlace(context.Background(), "eiffel")
	require.True(t, applied)

	snap, applied := r.ctl.SelectPlace(context.Background(), "nowhere")
	assert.False(t, applied)
	assert.Equal(t, "Eiffel Tower", snap.Selection.Place.Name)
}

func TestController_StaleResolutionDropped(t *testing.T) {
	r := newRig()
	gate := make(chan struct{})
	r.places.mu.Lock()
	r.places.gates["louvre"] = gate
	r.places.mu.Unlock()

	type result struct {
		snap    app.Snapshot
		applied bool
	}
	slow := make(chan result, 1)
	go func() {
		s, ok := r.ctl.SelectPlace(context.Background(), "louvre")
		slow <- result{s, ok}
	}()
	require.Eventually(t, func() bool { return r.places.Calls() == 1 }, time.Second, 5*time.Millisecond)

	snap, applied := r.ctl.SelectPlace(context.Background(), "eiffel")
	require.True(t, applied)
	assert.Equal(t, "Eiffel Tower", snap.Selection.Place.Name)

	close(gate)
	got := <-slow
	assert.False(t, got.applied)
	assert.Equal(t, "Eiffel Tower", got.snap.Selection.Place.Name)
	assert.Equal(t, "Eiffel Tower", r.ctl.Snapshot().Selection.Place.Name)
}

func TestController_SubmitSuccessResets(t *testing.T) {
	r := newRig()
	r.spots.create = func(domain.AuthContext, domain.SpotPayload, []domain.Attachment) (domain.SubmitResult, error) {
		return domain.SubmitResult{Message: "ok", Body: map[string]any{"message": "ok"}}, nil
	}
	r.ctl.SelectPlace(context.Background(), "louvre")
	r.ctl.SetDescription("Great view")
	r.ctl.AttachFiles(domain.Attachment{Name: "a.jpg", Data: []byte("x")})

	res, err := r.ctl.Submit(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Message)

	snap := r.ctl.Snapshot()
	assert.True(t, snap.Selection.Empty())
	assert.Nil(t, snap.Selection.Marker)
	assert.Equal(t, "", snap.Draft.Description)
	assert.Empty(t, snap.Draft.Files)
	assert.Equal(t, domain.Idle(), snap.Draft.Status)
	assert.False(t, snap.CanSubmit)
	assert.Equal(t, 1, r.spots.Calls())
}

func TestController_SubmitFailureKeepsState(t *testing.T) {
	r := newRig()
	r.spots.create = func(domain.AuthContext, domain.SpotPayload, []domain.Attachment) (domain.SubmitResult, error) {
		return domain.SubmitResult{}, &domain.RemoteError{Status: 500, Message: "boom"}
	}
	r.ctl.SelectPlace(context.Background(), "louvre")
	r.ctl.SetDescription("Great view")
	before := r.ctl.Snapshot()

	_, err := r.ctl.Submit(context.Background(), user)
	require.Error(t, err)

	after := r.ctl.Snapshot()
	assert.Equal(t, before.Selection, after.Selection)
	assert.Equal(t, "Great view", after.Draft.Description)
	assert.Equal(t, domain.Failed("boom"), after.Draft.Status)
	assert.True(t, after.CanSubmit, "a failed draft can be retried")
}

func TestController_SubmitWithoutPlace(t *testing.T) {
	r := newRig()
	r.ctl.SetDescription("x")

	_, err := r.ctl.Submit(context.Background(), user)
	assert.ErrorIs(t, err, domain.ErrNoPlaceSelected)
	assert.Equal(t, 0, r.spots.Calls())
	assert.Equal(t, domain.Idle(), r.ctl.Snapshot().Draft.Status)
}

func TestController_SubmitInFlightRejectsSecond(t *testing.T) {
	r := newRig()
	release := make(chan struct{})
	r.spots.create = func(domain.AuthContext, domain.SpotPayload, []domain.Attachment) (domain.SubmitResult, error) {
		<-release
		return domain.SubmitResult{Message: "ok"}, nil
	}
	r.ctl.SelectPlace(context.Background(), "louvre")
	r.ctl.SetDescription("d")

	done := make(chan error, 1)
	go func() {
		_, err := r.ctl.Submit(context.Background(), user)
		done <- err
	}()
	require.Eventually(t, func() bool { return r.spots.Calls() == 1 }, time.Second, 5*time.Millisecond)

	snap := r.ctl.Snapshot()
	assert.Equal(t, domain.StatusInFlight, snap.Draft.Status.State)
	assert.False(t, snap.CanSubmit)
	assert.True(t, r.ctl.Busy())

	_, err := r.ctl.Submit(context.Background(), user)
	assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, r.spots.Calls())
}

func TestController_ChangesDuringSubmitSurviveSuccess(t *testing.T) {
	r := newRig()
	release := make(chan struct{})
	r.spots.create = func(domain.AuthContext, domain.SpotPayload, []domain.Attachment) (domain.SubmitResult, error) {
		<-release
		return domain.SubmitResult{Message: "ok"}, nil
	}
	r.ctl.SelectPlace(context.Background(), "louvre")
	r.ctl.SetDescription("first spot")

	done := make(chan error, 1)
	go func() {
		_, err := r.ctl.Submit(context.Background(), user)
		done <- err
	}()
	require.Eventually(t, func() bool { return r.spots.Calls() == 1 }, time.Second, 5*time.Millisecond)

	_, applied := r.ctl.SelectPlace(context.Background(), "eiffel")
	require.True(t, applied)
	r.ctl.SetDescription("second spot")
	r.ctl.AttachFiles(domain.Attachment{Name: "tower.jpg", Data: []byte("x")})

	close(release)
	require.NoError(t, <-done)

	snap := r.ctl.Snapshot()
	require.NotNil(t, snap.Selection.Place)
	assert.Equal(t, "Eiffel Tower", snap.Selection.Place.Name)
	assert.Equal(t, "second spot", snap.Draft.Description)
	assert.Equal(t, []string{"tower.jpg"}, snap.Draft.Files)
	assert.Equal(t, domain.StatusIdle, snap.Draft.Status.State)
	assert.True(t, snap.CanSubmit)
}

func TestController_SelectionDuringSubmitKeptWhenDraftUntouched(t *testing.T) {
	r := newRig()
	release := make(chan struct{})
	r.spots.create = func(domain.AuthContext, domain.SpotPayload, []domain.Attachment) (domain.SubmitResult, error) {
		<-release
		return domain.SubmitResult{Message: "ok"}, nil
	}
	r.ctl.SelectPlace(context.Background(), "louvre")
	r.ctl.SetDescription("first spot")

	done := make(chan error, 1)
	go func() {
		_, err := r.ctl.Submit(context.Background(), user)
		done <- err
	}()
	require.Eventually(t, func() bool { return r.spots.Calls() == 1 }, time.Second, 5*time.Millisecond)
	r.ctl.SelectPlace(context.Background(), "eiffel")

	close(release)
	require.NoError(t, <-done)

	snap := r.ctl.Snapshot()
	assert.Equal(t, "Eiffel Tower", snap.Selection.Place.Name)
	assert.Empty(t, snap.Draft.Description)
	assert.Equal(t, domain.StatusIdle, snap.Draft.Status.State)
}

func TestController_PhotoNavigation(t *testing.T) {
	r := newRig()
	r.ctl.SelectPlace(context.Background(), "louvre")

	_, err := r.ctl.NextPhoto()
	assert.ErrorIs(t, err, domain.ErrPhotoClosed)

	snap, err := r.ctl.OpenPhoto(0)
	require.NoError(t, err)
	assert.Equal(t, domain.PhotoView{Visible: true, Index: 0, Total: 4, URL: "https://photos.test/r0"}, snap.Photo)

	snap, err = r.ctl.PrevPhoto()
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Photo.Index)
	assert.Equal(t, cdnPhoto, snap.Photo.URL)

	snap, err = r.ctl.NextPhoto()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Photo.Index)

	_, err = r.ctl.OpenPhoto(4)
	assert.ErrorIs(t, err, domain.ErrPhotoIndex)

	snap = r.ctl.ClosePhoto()
	assert.False(t, snap.Photo.Visible)

	// a new selection always starts with the viewer closed
	r.ctl.OpenPhoto(1)
	snap, _ = r.ctl.SelectPlace(context.Background(), "eiffel")
	assert.False(t, snap.Photo.Visible)
	_, err = r.ctl.OpenPhoto(0)
	assert.ErrorIs(t, err, domain.ErrNoPhotos)
}

func TestController_Attachments(t *testing.T) {
	r := newRig()
	r.ctl.AttachFiles(domain.Attachment{Name: "a.jpg"}, domain.Attachment{Name: "b.jpg"})
	r.ctl.AttachFiles(domain.Attachment{Name: "c.jpg"})

	snap, err := r.ctl.RemoveFile(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, snap.Draft.Files)

	_, err = r.ctl.RemoveFile(5)
	assert.ErrorIs(t, err, domain.ErrFileIndex)
}
