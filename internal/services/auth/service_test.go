package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/gideon/internal/dependencies/mocks"
	"github.com/mcoot/gideon/internal/model"
)

const apiToken = "s3cret-token"

type staticPerms model.PermLevel

func (p staticPerms) PermLevel() model.PermLevel { return model.PermLevel(p) }

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiToken), bcrypt.MinCost)
	s.Require().NoError(err)

	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	perms := staticPerms{Root: []model.ContactID{1}, Manager: []model.ContactID{2}}
	s.service = New(perms, s.clock, Config{TokenHash: string(hash)})
}

// Token tests

func (s *ServiceSuite) TestVerifyToken() {
	s.NoError(s.service.VerifyToken(apiToken))
	s.ErrorIs(s.service.VerifyToken("wrong"), ErrInvalidCredentials)
	s.ErrorIs(s.service.VerifyToken(""), ErrInvalidCredentials)
}

func (s *ServiceSuite) TestVerifyTokenWithoutConfiguredHash() {
	svc := New(staticPerms{}, s.clock, DefaultConfig())
	s.ErrorIs(svc.VerifyToken(apiToken), ErrInvalidCredentials)
}

func (s *ServiceSuite) TestHashTokenVerifies() {
	hash, err := HashToken("other")
	s.Require().NoError(err)

	svc := New(staticPerms{}, s.clock, Config{TokenHash: hash})
	s.NoError(svc.VerifyToken("other"))
}

// Session tests

func (s *ServiceSuite) TestLoginCreatesValidSession() {
	session, err := s.service.Login(apiToken, 2)
	s.Require().NoError(err)
	s.NotEmpty(session.Token)
	s.Equal(Caller{Contact: 2}, session.Caller)

	validated, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(session.Caller, validated.Caller)
}

func (s *ServiceSuite) TestLoginWithoutContactIsOperator() {
	session, err := s.service.Login(apiToken, 0)
	s.Require().NoError(err)
	s.True(session.Caller.Operator)
	s.Equal(LevelRoot, s.service.LevelOf(session.Caller))
}

func (s *ServiceSuite) TestLoginRejectsWrongToken() {
	_, err := s.service.Login("nope", 1)
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestSessionExpires() {
	session, _ := s.service.Login(apiToken, 1)

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSession() {
	session, _ := s.service.Login(apiToken, 1)
	s.service.InvalidateSession(session.Token)

	_, err := s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	old, _ := s.service.Login(apiToken, 1)
	s.clock.Advance(23 * time.Hour)
	fresh, _ := s.service.Login(apiToken, 2)
	s.clock.Advance(2 * time.Hour)

	s.service.CleanExpiredSessions()

	s.service.mu.RLock()
	defer s.service.mu.RUnlock()
	s.NotContains(s.service.sessions, old.Token)
	s.Contains(s.service.sessions, fresh.Token)
}

// Permission tests

func (s *ServiceSuite) TestLevelOf() {
	s.Equal(LevelRoot, s.service.LevelOf(Caller{Contact: 1}))
	s.Equal(LevelManager, s.service.LevelOf(Caller{Contact: 2}))
	s.Equal(LevelAnyone, s.service.LevelOf(Caller{Contact: 3}))
	s.Equal(LevelAnyone, s.service.LevelOf(Anonymous))
}

func (s *ServiceSuite) TestRequire() {
	s.NoError(s.service.Require(Caller{Contact: 1}, LevelManager))
	s.NoError(s.service.Require(Caller{Contact: 2}, LevelManager))
	s.ErrorIs(s.service.Require(Caller{Contact: 2}, LevelRoot), ErrForbidden)
	s.ErrorIs(s.service.Require(Anonymous, LevelManager), ErrForbidden)
	s.NoError(s.service.Require(Anonymous, LevelAnyone))
}
