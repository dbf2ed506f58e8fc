package wifi

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotSupported     = errors.New("not supported")
	ErrNotFound         = errors.New("not found")
	ErrNotAvailable     = errors.New("not available")
	ErrOperationFailed  = errors.New("operation failed")
	ErrWirelessDisabled = errors.New("wireless is disabled")
)

// CommandError reports a failed OS utility invocation. It carries the command
// text, exit code, and combined output verbatim so nothing gets swallowed.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command failed with exit code %d: %s: %s", e.ExitCode, e.Command, strings.TrimSpace(e.Output))
}

// CommandNotFoundError means a required external utility is missing. It is
// raised at precondition time, before any operational command is attempted.
type CommandNotFoundError struct {
	Command     string
	InstallHint string
}

func (e *CommandNotFoundError) Error() string {
	if e.InstallHint == "" {
		return fmt.Sprintf("required command %q not found", e.Command)
	}
	return fmt.Sprintf("required command %q not found (%s)", e.Command, e.InstallHint)
}

// RadioToggleError means the radio did not reach the requested power state
// within the verification window.
type RadioToggleError struct {
	On bool
}

func (e *RadioToggleError) Error() string {
	state := "off"
	if e.On {
		state = "on"
	}
	return fmt.Sprintf("failed to verify wifi radio turned %s", state)
}

// NetworkNotFoundError means the target SSID was absent from a fresh scan.
type NetworkNotFoundError struct {
	SSID string
}

func (e *NetworkNotFoundError) Error() string {
	return fmt.Sprintf("network %q not found; it may be out of range", e.SSID)
}

// AuthError means the network rejected the supplied credential. Reason holds
// the raw OS-reported failure text for diagnostics.
type AuthError struct {
	SSID   string
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication to network %q failed: %s", e.SSID, e.Reason)
}

// InterfaceError means no usable wireless device exists.
type InterfaceError struct {
	Detail string
}

func (e *InterfaceError) Error() string {
	return fmt.Sprintf("no usable wifi interface: %s", e.Detail)
}

// ConnectionError is an activation failure with no more specific
// classification; the network is framed as likely out of range.
type ConnectionError struct {
	SSID  string
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to network %q; it is likely out of range: %v", e.SSID, e.Cause)
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

// VerificationError means the connect command reported success but the
// adapter did not end up associated with the requested SSID.
type VerificationError struct {
	Want string
	Got  string
}

func (e *VerificationError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("connected network verification failed: wanted %q, not associated", e.Want)
	}
	return fmt.Sprintf("connected network verification failed: wanted %q, got %q", e.Want, e.Got)
}

// InvalidIPAddressesError lists every entry that failed IP literal
// validation, not just the first.
type InvalidIPAddressesError struct {
	Addresses []string
}

func (e *InvalidIPAddressesError) Error() string {
	return fmt.Sprintf("invalid IP addresses: %s", strings.Join(e.Addresses, ", "))
}

// WaitTimeoutError means a bounded wait for a target state ran out of
// attempts. Distinct from a hard failure: the underlying command may have
// partially succeeded.
type WaitTimeoutError struct {
	What string
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for %s", e.What)
}

// KeychainErrorKind classifies credential-store failures.
type KeychainErrorKind int

const (
	KeychainAccessDenied KeychainErrorKind = iota
	KeychainUserCancelled
	KeychainNonInteractive
	KeychainFailure
)

// KeychainError is a credential-store failure mapped from a store-specific
// exit code. A missing entry is not an error; it is an empty result.
type KeychainError struct {
	Kind   KeychainErrorKind
	Detail string
}

func (e *KeychainError) Error() string {
	var what string
	switch e.Kind {
	case KeychainAccessDenied:
		what = "access to the credential store was denied"
	case KeychainUserCancelled:
		what = "credential access was cancelled by the user"
	case KeychainNonInteractive:
		what = "credential access requires an interactive session"
	default:
		what = "credential store operation failed"
	}
	if e.Detail == "" {
		return what
	}
	return fmt.Sprintf("%s: %s", what, e.Detail)
}
