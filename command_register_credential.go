package authflow

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RegisterCredentialMessage provisions the AuthenticationRecord for a
// principal at registration time. Password is required for the local
// provider and ignored for federated ones.
type RegisterCredentialMessage struct {
	PrincipalID   string        `json:"principal_id"`
	PrincipalType PrincipalType `json:"principal_type"`
	Provider      string        `json:"provider"`
	ProviderKey   string        `json:"provider_key"`
	Email         string        `json:"email"`
	Password      string        `json:"password"`
}

func (e RegisterCredentialMessage) Type() string { return "credential.register" }

// Validate checks the message shape before execution.
func (e RegisterCredentialMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.PrincipalID, validation.Required, is.UUID),
		validation.Field(&e.PrincipalType, validation.Required),
		validation.Field(&e.Provider, validation.Required),
		validation.Field(&e.ProviderKey, validation.Required),
		validation.Field(&e.Email, is.Email),
	)
}

type RegisterCredentialHandler struct {
	repo        RepositoryManager
	featureGate gate.FeatureGate
	logger      Logger
}

func NewRegisterCredentialHandler(repo RepositoryManager) *RegisterCredentialHandler {
	return &RegisterCredentialHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *RegisterCredentialHandler) WithLogger(logger Logger) *RegisterCredentialHandler {
	h.logger = logger
	return h
}

// WithFeatureGate gates provisioning behind the signup feature flag.
func (h *RegisterCredentialHandler) WithFeatureGate(featureGate gate.FeatureGate) *RegisterCredentialHandler {
	h.featureGate = featureGate
	return h
}

func (h *RegisterCredentialHandler) Execute(ctx context.Context, event RegisterCredentialMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during credential registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterCredentialHandler) execute(ctx context.Context, event RegisterCredentialMessage) error {
	if h.featureGate != nil {
		if err := requireFeatureGate(ctx, h.featureGate, gate.FeatureUsersSignup, ErrSignupDisabled); err != nil {
			return err
		}
	}

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid credential registration")
	}

	principalID, err := uuid.Parse(event.PrincipalID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid principal id")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := &AuthenticationRecord{
			PrincipalID:   principalID,
			PrincipalType: event.PrincipalType,
			Provider:      event.Provider,
			ProviderKey:   event.ProviderKey,
		}

		if event.Provider == ProviderLocal {
			hash, err := HashPassword(event.Password)
			if err != nil {
				var richErr *goerrors.Error
				if goerrors.As(err, &richErr) {
					return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
				}
				return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
			}
			record.PasswordHash = hash
		}

		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}

		if _, err := h.repo.Credentials().CreateTx(ctx, tx, record); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create authentication record")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "credential registration transaction failed")
	}

	return nil
}
