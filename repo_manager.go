package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Organizations() Organizations
}

type mngr struct {
	db            *bun.DB
	users         Users
	organizations Organizations
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:            db,
		users:         NewUsersRepository(db),
		organizations: NewOrganizationsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.organizations == nil {
		return errors.New("repository organizations should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Organizations() Organizations {
	return m.organizations
}

// StoreMembershipResolver answers membership questions straight from the
// users table.
func StoreMembershipResolver(users Users) MembershipResolver {
	return MembershipResolverFunc(func(ctx context.Context, userID string, orgID uuid.UUID) (bool, error) {
		user, err := users.GetByIdentifier(ctx, userID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return false, nil
			}
			return false, err
		}

		return user.OrganizationID != nil && *user.OrganizationID == orgID, nil
	})
}
