package pubsub

// closedError is returned once the pub-sub system has been closed.
type closedError struct {
	side string
}

func (e closedError) Error() string {
	return e.side + " is closed"
}

var (
	// ErrPublisherClosed is returned by Publish and Health after Close.
	ErrPublisherClosed error = closedError{side: "publisher"}

	// ErrSubscriberClosed is returned by Subscribe after Close.
	ErrSubscriberClosed error = closedError{side: "subscriber"}
)
