package wifi

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Orchestrator wraps an Adapter's raw connect primitives with profile
// resolution, retry/fallback policy, and typed failure classification.
// One attempt per call; there are no implicit retries beyond the documented
// strategy fallback.
type Orchestrator struct {
	adapter Adapter
	logger  *slog.Logger
}

// NewOrchestrator creates an Orchestrator. A nil logger uses slog.Default.
func NewOrchestrator(adapter Adapter, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{adapter: adapter, logger: logger}
}

// Connect associates with the given SSID and returns the connected SSID on
// success. If the adapter is already connected to the SSID it returns
// immediately without issuing any state-changing command, even when a
// password was supplied.
func (o *Orchestrator) Connect(ctx context.Context, ssid, password string) (string, error) {
	if ssid == "" {
		return "", errors.New("ssid must not be empty")
	}

	current, err := o.adapter.ConnectedNetwork(ctx)
	if err != nil {
		return "", err
	}
	if current == ssid {
		o.logger.Debug("already connected", "ssid", ssid)
		return ssid, nil
	}

	on, err := o.adapter.RadioOn(ctx)
	if err != nil {
		return "", err
	}
	if !on {
		if err := o.adapter.SetRadio(ctx, true); err != nil {
			return "", err
		}
	}

	profiles, err := o.adapter.SavedProfiles(ctx)
	if err != nil {
		return "", err
	}
	profile := BestProfile(profiles, ssid)

	if profile != nil {
		activated, err := o.connectViaProfile(ctx, profile, ssid, password)
		if err != nil {
			return "", o.classify(ssid, err)
		}
		if activated {
			return ssid, o.verify(ctx, ssid)
		}
		// Fell through: security kind undetermined or unsupported.
	}

	if err := o.directConnect(ctx, ssid, password); err != nil {
		return "", o.classify(ssid, err)
	}
	return ssid, o.verify(ctx, ssid)
}

// connectViaProfile activates an existing saved profile, refreshing its
// stored credential first when the caller supplied a different password.
// Returns false (and no error) when the profile cannot be used and a direct
// connect should be attempted instead.
func (o *Orchestrator) connectViaProfile(ctx context.Context, profile *NetworkProfile, ssid, password string) (bool, error) {
	if password != "" {
		stored, err := o.adapter.ProfilePassword(ctx, profile.Name)
		if err != nil {
			// Credential lookup being denied should not block connecting;
			// treat the stored credential as unknown.
			o.logger.Warn("could not read stored credential", "profile", profile.Name, "error", err)
			stored = ""
		}
		if stored != password {
			security, err := o.scanSecurity(ctx, ssid)
			if err != nil {
				return false, err
			}
			if !security.Supported() || security == SecurityUnknown {
				o.logger.Debug("security kind unusable for credential update, trying direct connect",
					"ssid", ssid, "security", security.String())
				return false, nil
			}
			if err := o.adapter.UpdateProfilePassword(ctx, profile.Name, password, security); err != nil {
				return false, err
			}
		}
	}
	if err := o.adapter.ActivateProfile(ctx, profile.Name); err != nil {
		return false, err
	}
	return true, nil
}

// directConnect joins the network without a saved profile, trying each of
// the adapter's connect mechanisms in preference order. The preferred
// mechanism's failure is surfaced only if the remaining ones also fail.
func (o *Orchestrator) directConnect(ctx context.Context, ssid, password string) error {
	security, err := o.scanSecurity(ctx, ssid)
	if err != nil {
		return err
	}
	if security == SecurityOpen {
		// Open networks never get a password, even if one was supplied.
		password = ""
	}

	strategies := o.adapter.ConnectStrategies()
	if len(strategies) == 0 {
		return ErrNotSupported
	}
	var lastErr error
	for _, s := range strategies {
		if lastErr != nil {
			o.logger.Warn("connect mechanism failed, falling back", "mechanism", s.Name, "error", lastErr)
		}
		if lastErr = s.Join(ctx, ssid, password, security); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// scanSecurity determines the network's current security kind from a fresh
// scan. An SSID missing from the scan yields SecurityUnknown, not an error:
// hidden networks do not appear in scans but can still be joined.
func (o *Orchestrator) scanSecurity(ctx context.Context, ssid string) (SecurityType, error) {
	results, err := o.adapter.Scan(ctx)
	if err != nil {
		return SecurityUnknown, err
	}
	for _, r := range results {
		if r.SSID == ssid {
			return r.Security, nil
		}
	}
	return SecurityUnknown, nil
}

// verify checks the post-condition that the adapter is now associated with
// the requested SSID, even when the underlying command reported success.
func (o *Orchestrator) verify(ctx context.Context, ssid string) error {
	current, err := o.adapter.ConnectedNetwork(ctx)
	if err != nil {
		return err
	}
	if current != ssid {
		return &VerificationError{Want: ssid, Got: current}
	}
	return nil
}

// Disconnect tears down the current association. Being already disconnected
// is success; the strict-verify discipline applies to connects only.
func (o *Orchestrator) Disconnect(ctx context.Context) error {
	return o.adapter.Disconnect(ctx)
}

// Known failure signatures, matched against raw command output in priority
// order.
const (
	sigNotFound    = "no network with ssid"
	sigOutOfRange  = "out of range"
	sigSecrets     = "secrets were required"
	sigAuthFailed  = "authentication"
	sigNoDevice    = "no suitable device"
	sigJoinFailure = "could not find network" // networksetup wording
)

// classify maps known failure signatures onto the error taxonomy. Anything
// without a recognized signature that is still a plain command failure
// becomes a generic ConnectionError; everything else is re-raised unchanged.
func (o *Orchestrator) classify(ssid string, err error) error {
	raw := CommandOutput(err)
	if raw == "" {
		raw = err.Error()
	}
	lower := strings.ToLower(raw)

	switch {
	case strings.Contains(lower, sigNotFound),
		strings.Contains(lower, sigJoinFailure),
		strings.Contains(lower, sigOutOfRange) && strings.Contains(lower, "scan"):
		return &NetworkNotFoundError{SSID: ssid}
	case strings.Contains(lower, sigSecrets), strings.Contains(lower, sigAuthFailed):
		return &AuthError{SSID: ssid, Reason: strings.TrimSpace(raw)}
	case strings.Contains(lower, sigNoDevice):
		return &InterfaceError{Detail: strings.TrimSpace(raw)}
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return &ConnectionError{SSID: ssid, Cause: err}
	}
	return err
}
