package user

import (
	"context"
	"encoding/json"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
)

var (
	// errors
	ErrNotFound             = errors.New("user not found")
	ErrEmailExists          = errors.New("a user with this email already exists")
	ErrAuthenticationFailed = errors.New("invalid credentials")
	ErrAccountDeactivated   = errors.New("account deactivated")

	NowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		EmailExists(ctx context.Context, email string) (bool, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		events  core.EventPublisher
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, events core.EventPublisher, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		events:  events,
		conf:    conf,
	}
}

// Register creates an active User from validated data and sends them a welcome email.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	exists, err := svc.repo.EmailExists(ctx, nu.Email)
	if err != nil {
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	}

	now := NowFunc()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	if usr, err = svc.repo.CreateUser(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}

	svc.sendWelcomeEmail(usr)
	svc.publish(ctx, usr)
	return usr, nil
}

func (svc *Service) sendWelcomeEmail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "welcome",
		TemplateData: map[string]interface{}{
			"ID":    usr.ID,
			"Name":  usr.Name,
			"Email": usr.Email,
		},
	})
}

func (svc *Service) publish(ctx context.Context, usr User) {
	if svc.events == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{"email": usr.Email})
	svc.events.Publish(ctx, core.Event{
		ID:         uuid.NewString(),
		Type:       core.EventUserRegistered,
		UserID:     usr.ID,
		ObjectID:   usr.ID,
		OccurredAt: NowFunc(),
		Payload:    payload,
	})
}

// Authenticate checks the credentials and records the login time.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	return svc.SetLastLogin(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = NewNullTime(NowFunc())
	usr, err := svc.repo.UpdateUser(ctx, usr)
	return usr, errors.Wrap(err, "setting last login")
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// ResetPassword sets a new password on the User owning email.
func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = NowFunc()
	return svc.repo.UpdateUser(ctx, usr)
}

// AddOrUpdate creates an active User or, when the email is taken, reactivates it with a new password and name.
func (svc *Service) AddOrUpdate(ctx context.Context, name, email, pwd string) (User, error) {
	now := NowFunc()
	email = core.CleanString(email, true /* lower */)

	usr, err := svc.repo.GetUserByEmail(ctx, email)
	creating := false
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return User{}, errors.Wrap(err, "finding user by email")
		}
		creating = true
		usr = User{Email: email, CreatedAt: now}
	}
	if name = core.CleanString(name); name != "" {
		usr.Name = name
	}
	usr.IsActive = true
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	if creating {
		return svc.repo.CreateUser(ctx, usr)
	}
	return svc.repo.UpdateUser(ctx, usr)
}
