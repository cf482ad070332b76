package app

import (
	"context"

	"go.uber.org/zap"
)

// AuthSync ties the session store and the persisted credentials to the
// backend's identity endpoints.
type AuthSync struct {
	gw      Gateway
	session *SessionStore
	chat    *ChatStore
	docs    *DocumentStore
	queries *Queries
	creds   *CredentialStore
	log     *zap.Logger
}

func NewAuthSync(gw Gateway, session *SessionStore, chat *ChatStore, docs *DocumentStore, queries *Queries, creds *CredentialStore, log *zap.Logger) *AuthSync {
	s := &AuthSync{gw: gw, session: session, chat: chat, docs: docs, queries: queries, creds: creds, log: log}
	// The identity check is explicitly never retried.
	queries.Register(QueryUser, 0, func(ctx context.Context) error {
		_, err := s.confirmIdentity(ctx)
		return err
	})
	return s
}

// Restore loads persisted credentials into the session, if any. The
// identity still has to be confirmed by CurrentUser before data loads.
func (s *AuthSync) Restore() {
	creds, err := s.creds.Load()
	if err != nil {
		s.log.Warn("credential load failed", zap.Error(err))
		return
	}
	if creds == nil || creds.AccessToken == "" {
		return
	}
	s.session.Login(creds.User, creds.AccessToken)
}

func (s *AuthSync) Login(ctx context.Context, email, password string) error {
	res, err := s.gw.Login(ctx, email, password)
	if err != nil {
		s.log.Warn("login failed", zap.Error(err))
		return err
	}
	s.session.Login(res.User, res.AccessToken)
	if err := s.creds.Save(Credentials{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	}); err != nil {
		s.log.Warn("credential save failed", zap.Error(err))
	}
	s.queries.Invalidate(QueryUser)
	return nil
}

func (s *AuthSync) Register(ctx context.Context, username, email, password string) error {
	res, err := s.gw.Register(ctx, username, email, password)
	if err != nil {
		s.log.Warn("register failed", zap.Error(err))
		return err
	}
	if res.AccessToken != "" {
		s.session.Login(res.User, res.AccessToken)
		if err := s.creds.Save(Credentials{
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
			IDToken:      res.IDToken,
			User:         res.User,
		}); err != nil {
			s.log.Warn("credential save failed", zap.Error(err))
		}
	}
	s.queries.Invalidate(QueryUser)
	return nil
}

// Logout tears the whole session down: credentials, all three stores and
// the query cache. Local teardown runs even if nothing was logged in.
func (s *AuthSync) Logout() {
	if err := s.creds.Clear(); err != nil {
		s.log.Warn("credential clear failed", zap.Error(err))
	}
	s.session.Reset()
	s.chat.Reset()
	s.docs.Reset()
	s.queries.Reset()
}

// CurrentUser confirms the persisted identity with the backend. No token
// means no request and a cleared session. A failed check wipes credentials
// and resets the session; it is not retried and not an error to callers,
// mirroring the unauthenticated-start path.
func (s *AuthSync) CurrentUser(ctx context.Context) (*User, error) {
	return s.confirmIdentity(ctx)
}

func (s *AuthSync) confirmIdentity(ctx context.Context) (*User, error) {
	if s.session.Token() == "" {
		s.session.Reset()
		return nil, nil
	}
	user, err := s.gw.CurrentUser(ctx)
	if err != nil {
		s.log.Warn("identity check failed", zap.Error(err))
		s.session.Reset()
		return nil, nil
	}
	s.session.SetUser(user)
	return user, nil
}

func (s *AuthSync) ForgotPassword(ctx context.Context, email string) error {
	return s.gw.ForgotPassword(ctx, email)
}

func (s *AuthSync) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	return s.gw.ConfirmForgotPassword(ctx, email, code, newPassword)
}
