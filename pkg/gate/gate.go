// Package gate is the client side of the dashboard's session gate: it decides
// whether the credential surface or the dashboard is shown, and drives PIN
// submission, lockout display and remember-me persistence.
package gate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	pkgauth "github.com/BradenHooton/frontdesk/pkg/auth"
)

type State string

const (
	StateChecking        State = "checking"
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
	StateBlocked         State = "blocked"
)

// Messages shown on the credential surface.
const (
	MsgNetwork        = "Connection error. Please check your network and try again."
	MsgSessionExpired = "Your session has expired. Please enter your PIN again."
	MsgCheckFailed    = "Unable to verify your session. Please enter your PIN."
	MsgLogoutFailed   = "Logout failed. Please try again."
)

// Config selects the gate's behaviour.
type Config struct {
	// LockoutAware turns 429 answers into the Blocked state.
	LockoutAware bool
	Policy       pkgauth.SecretPolicy
	// RememberMe offers the remember-me control.
	RememberMe bool
}

// ViewModel is everything a view needs to render the gate.
type ViewModel struct {
	State             State
	CredentialVisible bool
	DashboardVisible  bool
	InputEnabled      bool
	SubmitEnabled     bool
	RememberMeEnabled bool
	RememberMeChecked bool
	Input             string
	Error             string
	LockoutMinutes    int
	Processing        bool
}

// Backend is the server side of the gate. *Client implements it.
type Backend interface {
	CheckSession(ctx context.Context) (*SessionStatus, error)
	VerifyPIN(ctx context.Context, secret string, rememberMe bool) (*VerifyResult, error)
	Logout(ctx context.Context) error
}

// Gate holds the gate state for one dashboard instance.
type Gate struct {
	cfg     Config
	backend Backend
	store   Store
	logger  *slog.Logger

	mu         sync.Mutex
	state      State
	input      string
	rememberMe bool
	errMsg     string
	lockout    *RateLimitError
	processing bool

	onAuthenticated []func(context.Context)
	onChange        []func(ViewModel)
}

// New returns a gate in the Checking state. A nil store keeps remember-me in
// memory only; a nil logger discards diagnostics.
func New(cfg Config, backend Backend, store Store, logger *slog.Logger) *Gate {
	if cfg.Policy == "" {
		cfg.Policy = pkgauth.PolicyShortNumeric
	}
	if store == nil {
		store = &MemoryStore{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gate{
		cfg:     cfg,
		backend: backend,
		store:   store,
		logger:  logger,
		state:   StateChecking,
	}
}

// OnAuthenticated registers fn to run each time the gate opens.
func (g *Gate) OnAuthenticated(fn func(context.Context)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onAuthenticated = append(g.onAuthenticated, fn)
}

// OnChange registers fn to receive every new view model.
func (g *Gate) OnChange(fn func(ViewModel)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onChange = append(g.onChange, fn)
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) View() ViewModel {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}

func (g *Gate) viewLocked() ViewModel {
	open := g.state == StateUnauthenticated && !g.processing
	vm := ViewModel{
		State:             g.state,
		CredentialVisible: g.state == StateUnauthenticated || g.state == StateBlocked,
		DashboardVisible:  g.state == StateAuthenticated,
		InputEnabled:      open,
		SubmitEnabled:     open,
		RememberMeEnabled: open && g.cfg.RememberMe,
		RememberMeChecked: g.rememberMe,
		Input:             g.input,
		Error:             g.errMsg,
		Processing:        g.processing,
	}
	if g.state == StateBlocked && g.lockout != nil {
		vm.LockoutMinutes = g.lockout.Minutes
	}
	return vm
}

// SetInput updates the secret field. Ignored while the field is disabled.
func (g *Gate) SetInput(secret string) {
	g.update(func() bool {
		if g.state != StateUnauthenticated || g.processing {
			return false
		}
		g.input = secret
		return true
	})
}

// SetRememberMe toggles the remember-me control.
func (g *Gate) SetRememberMe(on bool) {
	g.update(func() bool {
		if !g.cfg.RememberMe || g.state != StateUnauthenticated || g.processing {
			return false
		}
		g.rememberMe = on
		return true
	})
}

// update runs fn under the lock and notifies listeners when it reports a change.
func (g *Gate) update(fn func() bool) {
	g.mu.Lock()
	if !fn() {
		g.mu.Unlock()
		return
	}
	vm := g.viewLocked()
	listeners := slices.Clone(g.onChange)
	g.mu.Unlock()

	for _, l := range listeners {
		l(vm)
	}
}

// begin claims the processing guard.
func (g *Gate) begin(next State) error {
	var busy bool
	g.update(func() bool {
		if g.processing {
			busy = true
			return false
		}
		g.processing = true
		if next != "" {
			g.state = next
		}
		return true
	})
	if busy {
		return ErrBusy
	}
	return nil
}

// Load asks the server whether the current session is still good. Any
// failure leaves the dashboard hidden.
func (g *Gate) Load(ctx context.Context) error {
	if err := g.begin(StateChecking); err != nil {
		return err
	}

	status, err := g.backend.CheckSession(ctx)
	if err != nil {
		g.logger.Warn("session check failed", slog.Any("error", err))
		g.update(func() bool {
			g.processing = false
			g.state = StateUnauthenticated
			g.lockout = nil
			g.errMsg = MsgCheckFailed
			return true
		})
		return err
	}

	if status.Authenticated {
		g.authenticate(ctx, status.RememberMe)
		return nil
	}

	stored, err := g.store.Load()
	if err != nil {
		g.logger.Warn("failed to read remember-me preference", slog.Any("error", err))
	}
	g.update(func() bool {
		g.processing = false
		g.state = StateUnauthenticated
		g.lockout = nil
		g.errMsg = ""
		if status.SessionExpired {
			g.errMsg = MsgSessionExpired
		}
		g.rememberMe = g.cfg.RememberMe && stored.RememberMe
		return true
	})
	return nil
}

// Submit sends the current input to the server. Secrets rejected by the
// policy return a *ValidationError without any network call.
func (g *Gate) Submit(ctx context.Context) error {
	var (
		secret     string
		rememberMe bool
		refused    error
	)
	g.update(func() bool {
		switch {
		case g.processing:
			refused = ErrBusy
			return false
		case g.state == StateBlocked:
			refused = g.lockout
			return false
		case g.state != StateUnauthenticated:
			refused = errors.New("gate: not accepting credentials in state " + string(g.state))
			return false
		}

		if err := g.cfg.Policy.Validate(g.input); err != nil {
			refused = &ValidationError{Message: err.Error()}
			g.errMsg = err.Error()
			return true
		}

		secret = g.input
		rememberMe = g.cfg.RememberMe && g.rememberMe
		g.processing = true
		g.errMsg = ""
		return true
	})
	if refused != nil {
		return refused
	}

	result, err := g.backend.VerifyPIN(ctx, secret, rememberMe)
	if err == nil {
		g.authenticate(ctx, result.RememberMe)
		return nil
	}

	var lockout *RateLimitError
	switch {
	case errors.As(err, &lockout):
		g.update(func() bool {
			g.processing = false
			g.errMsg = lockout.Message
			if g.cfg.LockoutAware {
				g.state = StateBlocked
				g.lockout = lockout
			}
			return true
		})
	case isNetwork(err):
		g.logger.Warn("credential submission failed", slog.Any("error", err))
		g.update(func() bool {
			g.processing = false
			g.errMsg = MsgNetwork
			return true
		})
	default:
		msg := err.Error()
		var authErr *AuthError
		if errors.As(err, &authErr) && authErr.Message == "" {
			msg = "Invalid PIN"
		}
		g.update(func() bool {
			g.processing = false
			g.errMsg = msg
			return true
		})
	}
	return err
}

func isNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// authenticate opens the gate. rememberMe is the server's answer and wins
// over whatever the control showed.
func (g *Gate) authenticate(ctx context.Context, rememberMe bool) {
	stored, err := g.store.Load()
	if err != nil {
		g.logger.Warn("failed to read gate store", slog.Any("error", err))
	}
	stored.RememberMe = rememberMe
	if err := g.store.Save(stored); err != nil {
		g.logger.Warn("failed to persist remember-me", slog.Any("error", err))
	}

	var hooks []func(context.Context)
	g.update(func() bool {
		g.processing = false
		g.state = StateAuthenticated
		g.rememberMe = rememberMe
		g.input = ""
		g.errMsg = ""
		g.lockout = nil
		hooks = append(hooks, g.onAuthenticated...)
		return true
	})

	for _, fn := range hooks {
		fn(ctx)
	}
}

// Logout ends the server session and shows the credential surface again.
func (g *Gate) Logout(ctx context.Context) error {
	if err := g.begin(""); err != nil {
		return err
	}

	if err := g.backend.Logout(ctx); err != nil {
		g.logger.Warn("logout failed", slog.Any("error", err))
		g.update(func() bool {
			g.processing = false
			g.errMsg = MsgLogoutFailed
			return true
		})
		return err
	}

	if err := g.store.Clear(); err != nil {
		g.logger.Warn("failed to clear gate store", slog.Any("error", err))
	}

	g.update(func() bool {
		g.processing = false
		g.state = StateUnauthenticated
		g.input = ""
		g.errMsg = ""
		g.rememberMe = false
		g.lockout = nil
		return true
	})
	return nil
}

// Reinvoke closes the gate when err says the session is gone. It reports
// whether it did, so callers can skip rendering.
func (g *Gate) Reinvoke(ctx context.Context, err error) bool {
	if !IsSessionExpired(err) {
		return false
	}
	g.logger.Info("session rejected by server, showing gate", slog.Any("error", err))
	g.update(func() bool {
		g.state = StateUnauthenticated
		g.input = ""
		g.errMsg = MsgSessionExpired
		g.lockout = nil
		return true
	})
	return true
}
