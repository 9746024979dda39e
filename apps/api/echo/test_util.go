package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/convenientedu/portal/core"
	"github.com/convenientedu/portal/core/credit"
	"github.com/convenientedu/portal/core/schedule"
	"github.com/convenientedu/portal/core/session"
	"github.com/convenientedu/portal/core/user"
	emailsvc "github.com/convenientedu/portal/services/email"
	dummydb "github.com/convenientedu/portal/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testApp struct {
	server Server
	db     *dummydb.DB
	users  *user.Service
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := core.NewConfig()
	conf.TestMode = true
	conf.Debug = false

	db, err := dummydb.Open()
	require.NoError(t, err)

	users := user.NewService(dummydb.NewUserRepository(db))
	logger := nopLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	sessions := session.NewService(
		dummydb.NewSessionRepository(db),
		session.NewTokenService(conf.SecretKey, conf.AppName),
		users, mailSvc, logger, conf,
	)

	srv := NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     users,
		ScheduleSvc: schedule.NewService(dummydb.NewScheduleRepository(db), logger),
		SessionSvc:  sessions,
		CreditSvc:   credit.NewService(dummydb.NewCreditRepository(db)),
		Scopes:      user.NewResolver(dummydb.NewScopeRepository(db)),
	})
	return &testApp{server: srv, db: db, users: users}
}

func (app *testApp) seedUser(t *testing.T, name, uname string, role user.Role) user.User {
	t.Helper()

	usr := user.User{Name: name, Username: uname, Email: uname + "@example.com", Role: role, IsActive: true}
	require.NoError(t, usr.SetPassword("s3cr3t"))
	usr, err := app.users.Create(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	t.Helper()

	token, err := GenerateToken(GetUserClaims(usr))
	require.NoError(t, err)
	return token
}

func (app *testApp) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echoHeaderContentType, "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into), "body: %s", rec.Body.String())
}
