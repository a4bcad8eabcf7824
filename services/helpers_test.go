package services

import (
	"backoffice/database"
	"backoffice/models"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	admin = models.Actor{UserID: 1, Role: models.RoleAdmin}
	alice = models.Actor{UserID: 2, Role: models.RoleUser}
	bob   = models.Actor{UserID: 3, Role: models.RoleUser}
)

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.Open(database.Options{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func mustCustomer(t *testing.T, s *CustomerService, actor models.Actor, req CustomerRequest) *models.Customer {
	t.Helper()
	c, err := s.Create(context.Background(), actor, req)
	require.NoError(t, err)
	return c
}

func mustDeposit(t *testing.T, s *DepositService, actor models.Actor, code string, amount float64, date string) *models.Deposit {
	t.Helper()
	d, err := s.Create(context.Background(), actor, DepositRequest{CustomerCode: code, Amount: amount, DepositDate: date})
	require.NoError(t, err)
	return d
}
