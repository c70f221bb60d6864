package auth_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/auth"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/Inventario-ledger/pkg/jwt"
)

const secret = "secret-de-prueba"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 10, Issuer: "ledger"}, zerolog.Nop())
	return uc, store
}

func TestEnsureDefaultAdmin_Idempotente(t *testing.T) {
	uc, store := newAuth(t)
	ctx := context.Background()

	require.NoError(t, uc.EnsureDefaultAdmin(ctx, "admin", "clave-1"))
	first, err := store.Users().GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, entity.RoleAdmin, first.Role)

	// segunda llamada con otro password no modifica el usuario
	require.NoError(t, uc.EnsureDefaultAdmin(ctx, "admin", "clave-2"))
	second, err := store.Users().GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PasswordHash, second.PasswordHash)
}

func TestLogin(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	_, err := uc.CreateUser(ctx, "ana", "s3creta", entity.RoleOperator)
	require.NoError(t, err)

	res, err := uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "s3creta"})
	require.NoError(t, err)
	assert.Equal(t, "ana", res.User.Username)
	claims, err := pkgjwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOperator, claims.Role)
	assert.Equal(t, res.User.ID, claims.UserID)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "mal"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, store := newAuth(t)
	ctx := context.Background()
	created, err := uc.CreateUser(ctx, "luis", "clave", entity.RoleViewer)
	require.NoError(t, err)

	u, err := store.Users().GetByID(ctx, created.ID)
	require.NoError(t, err)
	u.Active = false
	require.NoError(t, store.Users().Update(ctx, u))

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "luis", Password: "clave"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateUser_Validaciones(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	_, err := uc.CreateUser(ctx, "luis", "clave", entity.RoleViewer)
	require.NoError(t, err)

	_, err = uc.CreateUser(ctx, "luis", "x", entity.RoleViewer)
	assert.ErrorIs(t, err, domain.ErrUsernameExists)
	_, err = uc.CreateUser(ctx, "maria", "x", "superuser")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
