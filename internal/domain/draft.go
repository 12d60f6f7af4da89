package domain

type StatusState string

const (
	StatusIdle     StatusState = "idle"
	StatusInFlight StatusState = "in_flight"
	StatusFailed   StatusState = "failed"
)

// SubmissionStatus has no succeeded state: a successful send resets the draft to idle.
type SubmissionStatus struct {
	State  StatusState `json:"state"`
	Reason string      `json:"reason,omitempty"`
}

func Idle() SubmissionStatus     { return SubmissionStatus{State: StatusIdle} }
func InFlight() SubmissionStatus { return SubmissionStatus{State: StatusInFlight} }
func Failed(reason string) SubmissionStatus {
	return SubmissionStatus{State: StatusFailed, Reason: reason}
}

// Attachment is a user supplied file sent as its own multipart part.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// SubmissionDraft is the user editable payload pending send.
type SubmissionDraft struct {
	Description string
	Files       []Attachment
	Status      SubmissionStatus
}

func NewDraft() SubmissionDraft {
	return SubmissionDraft{Status: Idle()}
}

// Clone copies the file list; file contents are shared since they are never mutated.
func (d SubmissionDraft) Clone() SubmissionDraft {
	out := d
	out.Files = append([]Attachment(nil), d.Files...)
	return out
}

func (d SubmissionDraft) InFlight() bool { return d.Status.State == StatusInFlight }

func (d SubmissionDraft) WithFiles(files ...Attachment) SubmissionDraft {
	out := d.Clone()
	out.Files = append(out.Files, files...)
	return out
}

func (d SubmissionDraft) WithoutFile(i int) (SubmissionDraft, error) {
	if i < 0 || i >= len(d.Files) {
		return d, ErrFileIndex
	}
	out := d.Clone()
	out.Files = append(out.Files[:i], out.Files[i+1:]...)
	return out, nil
}

// FileNames lists attachment names in upload order.
func (d SubmissionDraft) FileNames() []string {
	names := make([]string, 0, len(d.Files))
	for _, f := range d.Files {
		names = append(names, f.Name)
	}
	return names
}
