//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Salo-Quispe/backend-poli-path/internal/model"
	repo "github.com/Salo-Quispe/backend-poli-path/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "polipath_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/polipath_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newUser(email string) model.User {
	return model.User{
		ID:           uuid.New(),
		Name:         "Ana",
		Lastname:     "Perez",
		Email:        email,
		PasswordHash: "hashed",
		IsActive:     true,
		Roles:        []model.Role{model.RoleUser},
		RegisterDate: time.Now(),
	}
}

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)

	u := newUser("ana.perez@epn.edu.ec")
	saved, err := ur.Create(ctx, u)
	require.NoError(t, err)
	require.Equal(t, u.ID, saved.ID)
	require.Empty(t, saved.PasswordHash)
	require.False(t, saved.IsVerified)

	byID, err := ur.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)
	require.Empty(t, byID.PasswordHash)

	byEmail, err := ur.GetByEmail(ctx, "ANA.PEREZ@EPN.EDU.EC")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	withHash, err := ur.GetByEmailWithPassword(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, "hashed", withHash.PasswordHash)

	_, err = ur.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, ur.Delete(ctx, u.ID))
	require.ErrorIs(t, ur.Delete(ctx, u.ID), model.ErrNotFound)
}

func TestUserRepository_UniqueEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)

	first := newUser("juan.lema@epn.edu.ec")
	_, err = ur.Create(ctx, first)
	require.NoError(t, err)

	dup := newUser("Juan.Lema@epn.edu.ec")
	_, err = ur.Create(ctx, dup)
	require.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestUserRepository_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)

	u := newUser("maria.toapanta@epn.edu.ec")
	_, err = ur.Create(ctx, u)
	require.NoError(t, err)

	verified := true
	updated, err := ur.Update(ctx, u.ID, model.UserUpdate{IsVerified: &verified})
	require.NoError(t, err)
	require.True(t, updated.IsVerified)
	require.Equal(t, u.Email, updated.Email)

	tok := "recovery-token"
	updated, err = ur.Update(ctx, u.ID, model.UserUpdate{RecoverPasswordToken: &tok})
	require.NoError(t, err)
	require.NotNil(t, updated.RecoverPasswordToken)
	require.Equal(t, tok, *updated.RecoverPasswordToken)

	hash := "new-hash"
	updated, err = ur.Update(ctx, u.ID, model.UserUpdate{PasswordHash: &hash, ClearRecoverPasswordToken: true})
	require.NoError(t, err)
	require.Nil(t, updated.RecoverPasswordToken)
	require.True(t, updated.IsVerified)

	withHash, err := ur.GetByEmailWithPassword(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, hash, withHash.PasswordHash)

	updated, err = ur.Update(ctx, u.ID, model.UserUpdate{Roles: []model.Role{model.RoleAdmin, model.RoleUser}})
	require.NoError(t, err)
	require.Len(t, updated.Roles, 2)

	// Empty update reads the current row back.
	same, err := ur.Update(ctx, u.ID, model.UserUpdate{})
	require.NoError(t, err)
	require.Equal(t, updated.Roles, same.Roles)

	_, err = ur.Update(ctx, uuid.New(), model.UserUpdate{IsVerified: &verified})
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_ListUnverifiedBefore(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)

	stale := newUser("pedro.caiza@epn.edu.ec")
	stale.RegisterDate = time.Now().Add(-72 * time.Hour)
	_, err = ur.Create(ctx, stale)
	require.NoError(t, err)

	fresh := newUser("lucia.simba@epn.edu.ec")
	_, err = ur.Create(ctx, fresh)
	require.NoError(t, err)

	verifiedOld := newUser("diego.tituana@epn.edu.ec")
	verifiedOld.RegisterDate = time.Now().Add(-72 * time.Hour)
	verifiedOld.IsVerified = true
	_, err = ur.Create(ctx, verifiedOld)
	require.NoError(t, err)

	cutoff := time.Now().Add(-48 * time.Hour)
	list, err := ur.ListUnverifiedBefore(ctx, cutoff)
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool, len(list))
	for _, u := range list {
		require.False(t, u.IsVerified)
		ids[u.ID] = true
	}
	require.True(t, ids[stale.ID])
	require.False(t, ids[fresh.ID])
	require.False(t, ids[verifiedOld.ID])
}
