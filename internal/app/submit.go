package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"spot_picker/internal/adapters/observability"
	"spot_picker/internal/domain"
)

// SubmissionWorkflow validates a selection and draft and sends them to the spots backend.
// It does not touch state; applying the outcome is the controller's job.
type SubmissionWorkflow struct {
	spots    domain.SpotsAPI
	journal  domain.SubmissionJournal
	shrinker domain.ImageShrinker
	now      func() time.Time
}

func NewSubmissionWorkflow(s domain.SpotsAPI, j domain.SubmissionJournal, sh domain.ImageShrinker) *SubmissionWorkflow {
	return &SubmissionWorkflow{spots: s, journal: j, shrinker: sh, now: time.Now}
}

// Validate runs every client-side check. A non-nil result means no request may be sent.
func (w *SubmissionWorkflow) Validate(sel domain.SelectionState, draft domain.SubmissionDraft, auth domain.AuthContext) error {
	if sel.Place == nil {
		return domain.ErrNoPlaceSelected
	}
	if strings.TrimSpace(draft.Description) == "" {
		return domain.ErrEmptyDescription
	}
	return checkAuth(auth, w.now())
}

// Submit sends exactly one create request. Remote failures come back as *domain.RemoteError.
func (w *SubmissionWorkflow) Submit(ctx context.Context, sel domain.SelectionState, draft domain.SubmissionDraft, auth domain.AuthContext) (domain.SubmitResult, error) {
	if err := w.Validate(sel, draft, auth); err != nil {
		observability.ObserveSubmission("rejected")
		return domain.SubmitResult{}, err
	}

	p := sel.Place
	payload := BuildPayload(*p, draft.Description)
	files := w.prepareFiles(draft.Files)

	res, err := w.spots.CreateSpot(ctx, auth, payload, files)

	entry := domain.JournalEntry{
		ID:        uuid.NewString(),
		PlaceID:   p.PlaceID,
		PlaceName: p.Name,
		Lat:       p.Lat,
		Lng:       p.Lng,
		Files:     len(files),
		CreatedAt: w.now().UTC(),
	}
	if err != nil {
		var re *domain.RemoteError
		if !errors.As(err, &re) {
			re = &domain.RemoteError{Message: err.Error()}
			err = re
		}
		entry.Outcome, entry.HTTPStatus, entry.Message = domain.OutcomeFailed, re.Status, re.Message
		w.record(ctx, entry)
		observability.ObserveSubmission("failed")
		log.Warn().Err(err).Str("place", p.Name).Msg("spot submission failed")
		return domain.SubmitResult{}, err
	}

	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	entry.Outcome, entry.HTTPStatus, entry.Message = domain.OutcomeSucceeded, status, res.Message
	w.record(ctx, entry)
	observability.ObserveSubmission("succeeded")
	log.Info().Str("place", p.Name).Int("files", len(files)).Msg("spot submitted")
	return res, nil
}

// BuildPayload maps a place and description onto the create request. The place's
// photo references travel as image URLs; the first one doubles as the image path.
func BuildPayload(p domain.PlaceRecord, description string) domain.SpotPayload {
	refs := append([]string{}, p.PhotoReferences...)
	imagePath := ""
	if len(refs) > 0 {
		imagePath = refs[0]
	}
	return domain.SpotPayload{
		Name:        p.Name,
		Description: strings.TrimSpace(description),
		Latitude:    p.Lat,
		Longitude:   p.Lng,
		ImagePath:   imagePath,
		ImageURLs:   refs,
		Creator:     nil,
	}
}

func (w *SubmissionWorkflow) prepareFiles(in []domain.Attachment) []domain.Attachment {
	if w.shrinker == nil {
		return in
	}
	out := make([]domain.Attachment, 0, len(in))
	for _, f := range in {
		small, err := w.shrinker.Shrink(f)
		if err != nil {
			log.Warn().Err(err).Str("file", f.Name).Msg("attachment not resized, sending original")
			small = f
		}
		out = append(out, small)
	}
	return out
}

func (w *SubmissionWorkflow) record(ctx context.Context, e domain.JournalEntry) {
	if w.journal == nil {
		return
	}
	// the journal must not hold up or fail a submission that already happened
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := w.journal.Record(jctx, e); err != nil {
		log.Warn().Err(err).Str("id", e.ID).Msg("journal write failed")
	}
}
