package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/BradenHooton/frontdesk/pkg/dashboard"
	"github.com/BradenHooton/frontdesk/pkg/gate"
)

var errNotLoggedIn = errors.New("not logged in: run `frontdesk login` first")

// session is the CLI's stand-in for a browser tab: a cookie jar client whose
// session cookie is kept in a BBolt file between runs.
type session struct {
	client *gate.Client
	store  sessionStore
	gate   *gate.Gate
}

type sessionStore interface {
	gate.Store
	io.Closer
}

func openSession() (*session, error) {
	policy, err := secretPolicy()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(sessionFile), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	store, err := gate.OpenBoltStore(sessionFile, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	client, err := gate.NewClient(serverURL, nil)
	if err != nil {
		store.Close()
		return nil, err
	}

	saved, err := store.Load()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	client.RestoreSessionCookie(saved.SessionCookie)

	g := gate.New(gate.Config{LockoutAware: true, Policy: policy, RememberMe: true}, client, store, newLogger())
	return &session{client: client, store: store, gate: g}, nil
}

// save writes the jar's current session cookie back to disk.
func (s *session) save() error {
	p, err := s.store.Load()
	if err != nil {
		return err
	}
	p.SessionCookie = s.client.SessionCookie()
	return s.store.Save(p)
}

func (s *session) Close() error {
	return s.store.Close()
}

// requireDashboard checks the saved session with the server.
func (s *session) requireDashboard(ctx context.Context) error {
	if err := s.gate.Load(ctx); err != nil {
		return err
	}
	if s.gate.State() != gate.StateAuthenticated {
		if msg := s.gate.View().Error; msg != "" {
			return fmt.Errorf("%s: %w", msg, errNotLoggedIn)
		}
		return errNotLoggedIn
	}
	return nil
}

func (s *session) loader() *dashboard.Loader {
	return dashboard.NewLoader(s.client, s.gate, dashboard.DefaultRetryPolicy(), newLogger())
}

// withDashboard opens the session, checks it and runs fn.
func withDashboard(ctx context.Context, fn func(s *session, l *dashboard.Loader) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.requireDashboard(ctx); err != nil {
		return err
	}

	err = fn(s, s.loader())
	if gate.IsSessionExpired(err) {
		return s.expired()
	}
	return err
}

// expired records the dropped session cookie and reports the logout.
func (s *session) expired() error {
	if err := s.save(); err != nil {
		newLogger().Warn("failed to save session", slog.String("file", sessionFile), slog.Any("error", err))
	}
	return errNotLoggedIn
}

// readLine returns the next trimmed line of r, or the flag value when set.
func readLine(r io.Reader, prompt io.Writer, label, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprintf(prompt, "%s: ", label)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
