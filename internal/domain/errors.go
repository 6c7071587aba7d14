package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrEmptyMood            = errors.New("please express your mood first")
	ErrQuotaExceeded        = errors.New("quota exceeded")
	ErrGenerationInProgress = errors.New("generation already in progress")
	ErrGenerationFailed     = errors.New("generation failed")
	ErrShareUnavailable     = errors.New("share unavailable")
)

// GenerationError carries an image backend failure. Its message is the
// upstream message verbatim so it can be shown to the user as-is, while
// errors.Is still matches ErrGenerationFailed.
type GenerationError struct {
	Err error
}

// NewGenerationError wraps err unless it already is a generation failure.
func NewGenerationError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrGenerationFailed) {
		return err
	}
	return &GenerationError{Err: err}
}

func (e *GenerationError) Error() string {
	if e == nil || e.Err == nil {
		return ErrGenerationFailed.Error()
	}
	return e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}
