package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type CreateOrganizationMessage struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Settings    map[string]any `json:"settings"`
	ActorClaims AuthClaims     `json:"-"`
}

func (e CreateOrganizationMessage) Type() string { return "organization.create" }

type CreateOrganizationHandler struct {
	service *OrganizationService
}

func NewCreateOrganizationHandler(service *OrganizationService) *CreateOrganizationHandler {
	return &CreateOrganizationHandler{service: service}
}

func (h *CreateOrganizationHandler) Execute(ctx context.Context, event CreateOrganizationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during organization creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateOrganizationHandler) execute(ctx context.Context, event CreateOrganizationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	_, err := h.service.Create(ctx, event.ActorClaims, CreateOrganizationParams{
		Name:        event.Name,
		Description: event.Description,
		Settings:    event.Settings,
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "organization creation failed")
	}

	return nil
}
