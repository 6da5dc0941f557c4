package flow

import "errors"

// Errors returned by Controller operations. All of them leave the session usable
// except ErrClosed.
var (
	ErrInvalidTransition = errors.New("operation not allowed in current state")
	ErrNotReady          = errors.New("assessment is still being prepared")
	ErrCameraDenied      = errors.New("camera access denied")
	ErrCameraRequired    = errors.New("camera access must be granted before the assessment starts")
	ErrNotAnswered       = errors.New("current question has not been answered")
	ErrInvalidAnswer     = errors.New("answer is not one of the question's options")
	ErrNoMoreQuestions   = errors.New("already on the last question")
	ErrNotLastQuestion   = errors.New("assessment can only be submitted from the last question")
	ErrAlreadySubmitted  = errors.New("assessment already submitted")
	ErrClosed            = errors.New("session closed")
)
