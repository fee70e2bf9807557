package registration

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/retroconnect/idverify/internal/capture"
	"github.com/retroconnect/idverify/internal/domain"
)

type Step int

const (
	StepPersonalInfo Step = iota + 1
	StepIDVerification
	StepSelfie
	StepReview
	StepResult
)

func (s Step) String() string {
	switch s {
	case StepPersonalInfo:
		return "personal_info"
	case StepIDVerification:
		return "id_verification"
	case StepSelfie:
		return "selfie"
	case StepReview:
		return "review"
	case StepResult:
		return "result"
	default:
		return "unknown"
	}
}

var (
	ErrSubmitRequired = errors.New("registration: the review step advances by submitting")
	ErrNotFinished    = errors.New("registration: retry is only available on the result step")
	ErrWrongStep      = errors.New("registration: action not available on this step")
)

// FormSubmitter is implemented by Submitter.
type FormSubmitter interface {
	Submit(ctx context.Context, f Form) *domain.VerificationResult
}

// Wizard owns the form and the current step. All mutations go through it.
type Wizard struct {
	mu     sync.Mutex
	form   Form
	step   Step
	result *domain.VerificationResult
	now    func() time.Time
}

func NewWizard() *Wizard {
	return &Wizard{
		form: NewForm(),
		step: StepPersonalInfo,
		now:  time.Now,
	}
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Form returns a copy of the current form.
func (w *Wizard) Form() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

func (w *Wizard) Result() *domain.VerificationResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Update edits the form and re-applies the input filters.
func (w *Wizard) Update(edit func(f *Form)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	edit(&w.form)
	w.form.Normalize()
}

// SetIDImages stores a finished ID capture. Starting a new scan replaces
// both sides.
func (w *Wizard) SetIDImages(pair capture.IDImagePair) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepIDVerification {
		return ErrWrongStep
	}
	w.form.IDFront = pair.Front
	w.form.IDBack = pair.Back
	return nil
}

func (w *Wizard) SetSelfie(image string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepSelfie {
		return ErrWrongStep
	}
	w.form.Selfie = &image
	return nil
}

// Next validates the current step and advances. The returned error is one
// of the per-step error structs when validation fails.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepPersonalInfo:
		if errs := ValidatePersonalInfo(w.form, w.now()); !errs.Empty() {
			return errs
		}
	case StepIDVerification:
		if errs := ValidateIDVerification(w.form); !errs.Empty() {
			return errs
		}
	case StepSelfie:
		if errs := ValidateReview(w.form); !errs.Empty() {
			return errs
		}
	case StepReview:
		return ErrSubmitRequired
	default:
		return ErrWrongStep
	}

	w.step++
	return nil
}

// Back moves one step back without validation.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepPersonalInfo && w.step < StepResult {
		w.step--
	}
}

// Submit sends the reviewed form and always lands on the result step.
func (w *Wizard) Submit(ctx context.Context, s FormSubmitter) (*domain.VerificationResult, error) {
	w.mu.Lock()
	if w.step != StepReview {
		w.mu.Unlock()
		return nil, ErrWrongStep
	}
	form := w.form
	w.mu.Unlock()

	result := s.Submit(ctx, form)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.result = result
	w.step = StepResult
	return result, nil
}

// Retry discards all captured images and the result, returning to the ID
// step. Personal info is kept.
func (w *Wizard) Retry() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepResult {
		return ErrNotFinished
	}
	w.form.ClearImages()
	w.result = nil
	w.step = StepIDVerification
	return nil
}
