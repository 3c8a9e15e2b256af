package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateOrganizationParams is the input for creating an organization.
type CreateOrganizationParams struct {
	Name        string
	Description string
	Settings    map[string]any
}

// UpdateOrganizationParams carries the mergeable fields of an organization.
// Nil pointers leave the stored value untouched.
type UpdateOrganizationParams struct {
	Name        *string
	Description *string
	IsActive    *bool
	Settings    map[string]any
}

// OrganizationService implements the organization operations, consulting the
// Authorizer's policy table before each one executes.
type OrganizationService struct {
	repo         RepositoryManager
	authz        *Authorizer
	logger       Logger
	activitySink ActivitySink
}

// NewOrganizationService wires the service with its store and authorizer.
func NewOrganizationService(repo RepositoryManager, authz *Authorizer) *OrganizationService {
	return &OrganizationService{
		repo:         repo,
		authz:        authz,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *OrganizationService) WithLogger(logger Logger) *OrganizationService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting org lifecycle events.
func (s *OrganizationService) WithActivitySink(sink ActivitySink) *OrganizationService {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// Create makes a new organization and moves the creator into it, both inside
// one transaction. The name pre-check is a fast-path courtesy: the unique
// constraint on organizations.name is what actually guards against a
// concurrent duplicate.
func (s *OrganizationService) Create(ctx context.Context, actor AuthClaims, params CreateOrganizationParams) (*Organization, error) {
	if err := s.authz.Check(ctx, actor, OpOrganizationCreate); err != nil {
		return nil, err
	}

	if _, err := s.repo.Organizations().GetByName(ctx, params.Name); err == nil {
		return nil, ErrOrganizationExists
	} else if !repository.IsRecordNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check organization name")
	}

	creatorID, err := uuid.Parse(actor.UserID())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid acting user id")
	}

	org := &Organization{
		Name:        params.Name,
		Description: params.Description,
		IsActive:    true,
		Settings:    params.Settings,
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if org, err = s.repo.Organizations().CreateTx(ctx, tx, org); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create organization")
		}

		if err := s.repo.Users().SetOrganizationTx(ctx, tx, creatorID, &org.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not join creator to organization")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitOrgEvent(ctx, ActivityEventOrganizationCreated, actor, map[string]any{
		"organization_id":   org.ID.String(),
		"organization_name": org.Name,
	})

	return org, nil
}

// FindAll lists every organization. Admin or super admin only.
func (s *OrganizationService) FindAll(ctx context.Context, actor AuthClaims) ([]*Organization, error) {
	if err := s.authz.Check(ctx, actor, OpOrganizationList); err != nil {
		return nil, err
	}

	return s.repo.Organizations().FindAll(ctx)
}

// FindByUser resolves the organization a user belongs to. A user without an
// organization yields (nil, nil), not an error.
func (s *OrganizationService) FindByUser(ctx context.Context, actor AuthClaims, userID string) (*Organization, error) {
	if err := s.authz.Check(ctx, actor, OpOrganizationReadSelf); err != nil {
		return nil, err
	}

	user, err := s.repo.Users().GetByIdentifier(ctx, userID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	if user.OrganizationID == nil {
		return nil, nil
	}

	return s.getOrganization(ctx, *user.OrganizationID)
}

// FindByID returns a single organization. Membership gate per the policy
// table.
func (s *OrganizationService) FindByID(ctx context.Context, actor AuthClaims, id uuid.UUID) (*Organization, error) {
	if err := s.authz.CheckOrganization(ctx, actor, OpOrganizationRead, id); err != nil {
		return nil, err
	}

	return s.getOrganization(ctx, id)
}

// Update merges the given fields into an organization. Membership gate per
// the policy table; a name collision surfaces from the store's unique index.
func (s *OrganizationService) Update(ctx context.Context, actor AuthClaims, id uuid.UUID, params UpdateOrganizationParams) (*Organization, error) {
	if err := s.authz.CheckOrganization(ctx, actor, OpOrganizationUpdate, id); err != nil {
		return nil, err
	}

	org, err := s.getOrganization(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		org.Name = *params.Name
	}
	if params.Description != nil {
		org.Description = *params.Description
	}
	if params.IsActive != nil {
		org.IsActive = *params.IsActive
	}
	for k, v := range params.Settings {
		org.AddSetting(k, v)
	}

	now := time.Now()
	org.UpdatedAt = &now

	updated, err := s.repo.Organizations().Update(ctx, org, repository.UpdateByID(org.ID.String()))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not update organization")
	}

	return updated, nil
}

// Remove deletes an organization. Members are deliberately left in place
// with their organization_id intact: there is no cascade, removal of the
// grouping does not touch the grouped users.
func (s *OrganizationService) Remove(ctx context.Context, actor AuthClaims, id uuid.UUID) error {
	if err := s.authz.Check(ctx, actor, OpOrganizationDelete); err != nil {
		return err
	}

	if _, err := s.getOrganization(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Organizations().DeleteByID(ctx, id); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrOrganizationNotFound
		}
		return err
	}

	s.emitOrgEvent(ctx, ActivityEventOrganizationDeleted, actor, map[string]any{
		"organization_id": id.String(),
	})

	return nil
}

// AddUser moves a user into an organization. Admin or super admin only.
func (s *OrganizationService) AddUser(ctx context.Context, actor AuthClaims, orgID uuid.UUID, userID uuid.UUID) (*SafeUser, error) {
	if err := s.authz.Check(ctx, actor, OpOrganizationAddUser); err != nil {
		return nil, err
	}

	user, err := s.repo.Users().GetByIdentifier(ctx, userID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	org, err := s.getOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Users().SetOrganization(ctx, user.ID, &org.ID); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not add user to organization")
	}

	user.OrganizationID = &org.ID

	s.emitOrgEvent(ctx, ActivityEventMemberAdded, actor, map[string]any{
		"organization_id": org.ID.String(),
		"user_id":         user.ID.String(),
	})

	return NewSafeUser(user), nil
}

// UsersInOrganization lists the members of an organization as wire-safe
// projections. Membership gate per the policy table.
func (s *OrganizationService) UsersInOrganization(ctx context.Context, actor AuthClaims, orgID uuid.UUID) ([]*SafeUser, error) {
	if err := s.authz.CheckOrganization(ctx, actor, OpOrganizationListUsers, orgID); err != nil {
		return nil, err
	}

	records, err := s.repo.Users().FindByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	members := make([]*SafeUser, len(records))
	for i, record := range records {
		members[i] = NewSafeUser(record)
	}

	return members, nil
}

func (s *OrganizationService) getOrganization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	org, err := s.repo.Organizations().GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}

	return org, nil
}

func (s *OrganizationService) emitOrgEvent(ctx context.Context, eventType ActivityEventType, actor AuthClaims, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		Actor:      ActorRef{ID: actor.UserID(), Type: "user"},
		UserID:     actor.UserID(),
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}
