package modem

import "errors"

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a Modem
	// that has not been successfully initialized.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Modem that has
	// already been closed.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrTimeout is returned when no terminal token ("OK"/"ERROR") arrives
	// within the command's timeout window. The command may be retried; the
	// serial line itself is assumed healthy.
	ErrTimeout = errors.New("command timed out")

	// ErrDeviceError is returned when the modem explicitly rejected a command
	// with "ERROR" or "+CME ERROR". Retrying is unlikely to help.
	ErrDeviceError = errors.New("modem returned error")

	// ErrTransportIO is returned when the underlying transport failed
	// (device vanished, permission lost). It is fatal: callers should stop
	// polling and shut down.
	ErrTransportIO = errors.New("transport I/O failure")
)
