//go:build integration

package command

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Tanisha-99/internal-transfer-system/internal/repository"
	"github.com/Tanisha-99/internal-transfer-system/shared/apperrors"
	"github.com/Tanisha-99/internal-transfer-system/shared/cqrs"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func newPostgresStore(t *testing.T) *repository.AccountWriteRepository {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("transfers"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(20)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, repository.RunMigrations(db, zap.NewNop()))
	return repository.NewAccountWriteRepository(db, 5*time.Second)
}

func TestIntegration_Transfer_Scenarios(t *testing.T) {
	store := newPostgresStore(t)
	accounts := NewAccountCommandService(store, nil, nil)
	engine := NewTransferCommandService(store, nil, nil)
	ctx := context.Background()

	_, err := accounts.CreateAccount(ctx, cqrs.CreateAccountCommand{AccountID: 1001, InitialBalance: dec("1000.00")})
	require.NoError(t, err)
	_, err = accounts.CreateAccount(ctx, cqrs.CreateAccountCommand{AccountID: 1002, InitialBalance: dec("500.00")})
	require.NoError(t, err)

	_, err = accounts.CreateAccount(ctx, cqrs.CreateAccountCommand{AccountID: 1001, InitialBalance: dec("1")})
	assert.ErrorIs(t, err, apperrors.ErrAccountAlreadyExists)

	_, err = engine.Transfer(ctx, transfer(1001, 1002, "1000.01"))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	_, err = engine.Transfer(ctx, transfer(9999, 1002, "1"))
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	result, err := engine.Transfer(ctx, transfer(1001, 1002, "100.00"))
	require.NoError(t, err)
	assertBalance(t, store, 1001, "900.00")
	assertBalance(t, store, 1002, "600.00")

	recorded, err := store.FindTransfer(ctx, result.ID)
	require.NoError(t, err)
	assert.True(t, recorded.Amount.Equal(dec("100")))

	_, err = engine.Transfer(ctx, transfer(1002, 1002, "600.00"))
	require.NoError(t, err)
	assertBalance(t, store, 1002, "600.00")
}

func TestIntegration_Transfer_ConcurrentOppositeDirections(t *testing.T) {
	store := newPostgresStore(t)
	accounts := NewAccountCommandService(store, nil, nil)
	engine := NewTransferCommandService(store, nil, nil)
	ctx := context.Background()

	for _, id := range []int64{1, 2} {
		_, err := accounts.CreateAccount(ctx, cqrs.CreateAccountCommand{AccountID: id, InitialBalance: dec("100")})
		require.NoError(t, err)
	}

	const rounds = 25
	var wg sync.WaitGroup
	errs := make(chan error, 4*rounds)
	for _, cmd := range []cqrs.TransferCommand{transfer(1, 2, "0.5"), transfer(2, 1, "0.5"), transfer(1, 2, "0.25"), transfer(2, 1, "0.25")} {
		wg.Add(1)
		go func(cmd cqrs.TransferCommand) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if _, err := engine.Transfer(ctx, cmd); err != nil {
					errs <- err
				}
			}
		}(cmd)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if errors.Is(err, apperrors.ErrStorageFailure) {
			t.Errorf("deadlock or lock timeout under opposite-direction load: %v", err)
			continue
		}
		t.Errorf("unexpected error: %v", err)
	}

	total := balanceOf(t, store, 1).Add(balanceOf(t, store, 2))
	assert.True(t, total.Equal(decimal.NewFromInt(200)), total.String())
	assertBalance(t, store, 1, "100")
}
