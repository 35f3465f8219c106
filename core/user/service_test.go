package user_test

import (
	"bytes"
	"context"
	"log"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/user"
	emailsvc "github.com/mentormatch/mentormatch/services/email"
	logsvc "github.com/mentormatch/mentormatch/services/logger"
	inmemdb "github.com/mentormatch/mentormatch/storage/database/inmem"
)

type recordingPublisher struct {
	events []core.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...core.Event) {
	p.events = append(p.events, events...)
}

func newService(t *testing.T) (*user.Service, user.Repository, *recordingPublisher) {
	t.Helper()
	conf := core.NewTestConfig()
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	pub := new(recordingPublisher)
	return user.NewService(repo, emailsvc.NewConsoleServiceMock(conf), pub, conf), repo, pub
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newService(t)

	usr, err := svc.Register(ctx, user.NewUser{Name: "Alice", Email: "alice@example.com", Password: "Tr1cky-Pwd!"})
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword("Tr1cky-Pwd!"))

	msg, ok := emailsvc.LastSentMessage()
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", msg.To[0].Address)
	assert.Equal(t, "welcome", msg.TemplateName)

	require.Len(t, pub.events, 1)
	assert.Equal(t, core.EventUserRegistered, pub.events[0].Type)
	assert.Equal(t, usr.ID, pub.events[0].UserID)

	_, err = svc.Register(ctx, user.NewUser{Email: "alice@example.com", Password: "An0ther-Pwd!"})
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, []core.FieldError{{Field: "email", Error: user.ErrEmailExists.Error()}}, vErr.Fields)
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)

	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	defer func(orig func() time.Time) { user.NowFunc = orig }(user.NowFunc)
	user.NowFunc = func() time.Time { return now }

	alice, err := svc.AddOrUpdate(ctx, "Alice", "Alice@Example.com ", "Tr1cky-Pwd!")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", alice.Email)

	bob, err := svc.AddOrUpdate(ctx, "Bob", "bob@example.com", "Tr1cky-Pwd!")
	require.NoError(t, err)
	bob.IsActive = false
	_, err = repo.UpdateUser(ctx, bob)
	require.NoError(t, err)

	tests := []struct {
		name    string
		creds   user.Credentials
		wantErr error
	}{
		{name: "unknown email", creds: user.Credentials{Email: "carol@example.com", Password: "Tr1cky-Pwd!"}, wantErr: user.ErrAuthenticationFailed},
		{name: "wrong password", creds: user.Credentials{Email: "alice@example.com", Password: "nope"}, wantErr: user.ErrAuthenticationFailed},
		{name: "deactivated", creds: user.Credentials{Email: "bob@example.com", Password: "Tr1cky-Pwd!"}, wantErr: user.ErrAccountDeactivated},
		{name: "success", creds: user.Credentials{Email: "alice@example.com", Password: "Tr1cky-Pwd!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Authenticate(ctx, tt.creds)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, alice.ID, usr.ID)
			assert.True(t, usr.LastLogin.Valid)
			assert.True(t, now.Equal(usr.LastLogin.Time))
		})
	}
}

func TestService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.AddOrUpdate(ctx, "Alice", "alice@example.com", "Tr1cky-Pwd!")
	require.NoError(t, err)

	usr, err := svc.ResetPassword(ctx, " ALICE@example.com", "N3w-Secret!")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("N3w-Secret!"))

	_, err = svc.ResetPassword(ctx, "nobody@example.com", "N3w-Secret!")
	assert.Equal(t, user.ErrNotFound, err)

	// AddOrUpdate reactivates and keeps the same account
	again, err := svc.AddOrUpdate(ctx, "", "alice@example.com", "Tr1cky-Pwd!")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, again.ID)
	assert.Equal(t, "Alice", again.Name)
}

func newValidate() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logsvc.NewTestLogger(log.New(&bytes.Buffer{}, "", 0)))
	return validate
}

func TestNewUser_Validate(t *testing.T) {
	validate := newValidate()

	tests := []struct {
		name    string
		data    user.NewUser
		wantTag string
	}{
		{name: "valid", data: user.NewUser{Name: "Alice", Email: "alice@example.com", Password: "Tr1cky-Pwd!"}},
		{name: "email required", data: user.NewUser{Password: "Tr1cky-Pwd!"}, wantTag: "required"},
		{name: "invalid email", data: user.NewUser{Email: "alice", Password: "Tr1cky-Pwd!"}, wantTag: "email"},
		{name: "password required", data: user.NewUser{Email: "alice@example.com"}, wantTag: "required"},
		{name: "too short", data: user.NewUser{Email: "alice@example.com", Password: "Tr1-Pw!"}, wantTag: "pwdminlen"},
		{name: "whitespace", data: user.NewUser{Email: "alice@example.com", Password: "Tr1cky Pwd!"}, wantTag: "pwdnospace"},
		{name: "all numeric", data: user.NewUser{Email: "alice@example.com", Password: "1234567890"}, wantTag: "pwdnotallnum"},
		{name: "not complex", data: user.NewUser{Email: "alice@example.com", Password: "trickypwd1"}, wantTag: "pwdcplx"},
		{name: "similar to email", data: user.NewUser{Email: "alicewonder@example.com", Password: "AliceWonder1!"}, wantTag: "pwdtoosim"},
		{name: "common", data: user.NewUser{Email: "bob@example.com", Password: "P@ssw0rd"}, wantTag: "pwdnocommon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok)
			assert.Equal(t, tt.wantTag, vErrs[0].Tag())
		})
	}
}
