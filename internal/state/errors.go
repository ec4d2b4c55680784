package state

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNotReady   = Error("no active whiteboard")
	ErrEmptyInput = Error("points slice is empty, cannot calculate bounding box")
)
