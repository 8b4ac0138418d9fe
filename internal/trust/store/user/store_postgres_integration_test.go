//go:build integration

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"trustplane/internal/trust/models"
	"trustplane/internal/trust/store/user"
	id "trustplane/pkg/domain"
	"trustplane/pkg/testutil/containers"
)

const userTrustDDL = `
	CREATE TABLE IF NOT EXISTS user_trust (
		user_id          UUID PRIMARY KEY,
		email_verified   BOOLEAN NOT NULL DEFAULT FALSE,
		phone_verified   BOOLEAN NOT NULL DEFAULT FALSE,
		id_verified      BOOLEAN NOT NULL DEFAULT FALSE,
		facial_verified  BOOLEAN NOT NULL DEFAULT FALSE,
		address_verified BOOLEAN NOT NULL DEFAULT FALSE,
		fully_verified   BOOLEAN NOT NULL DEFAULT FALSE,
		tier             TEXT,
		sub_status       TEXT,
		last_payment_at  TIMESTAMPTZ
	)
`

type PostgresUserStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *user.PostgresUserStore
	ctx      context.Context
}

func TestPostgresUserStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUserStoreSuite))
}

func (s *PostgresUserStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.GetManager().GetPostgres(s.T())

	_, err := s.postgres.DB.ExecContext(s.ctx, userTrustDDL)
	s.Require().NoError(err)

	s.store = user.NewPostgres(s.postgres.DB)
}

func (s *PostgresUserStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "user_trust"))
}

func (s *PostgresUserStoreSuite) newUser() id.UserID {
	userID, err := id.ParseUserID(uuid.NewString())
	s.Require().NoError(err)
	return userID
}

func (s *PostgresUserStoreSuite) TestVerificationFlags() {
	userID := s.newUser()

	s.Run("absent user returns nil", func() {
		flags, err := s.store.GetVerificationFlags(s.ctx, userID)
		s.Require().NoError(err)
		s.Nil(flags)
	})

	s.Run("roundtrip", func() {
		want := models.VerificationFlags{Email: true, Phone: true, ID: true}
		s.Require().NoError(s.store.SetVerificationFlags(s.ctx, userID, want))

		got, err := s.store.GetVerificationFlags(s.ctx, userID)
		s.Require().NoError(err)
		s.Require().NotNil(got)
		s.Equal(want, *got)
	})

	s.Run("upsert overwrites", func() {
		want := models.VerificationFlags{Email: true, Phone: true, ID: true, Facial: true, Address: true, FullyVerified: true}
		s.Require().NoError(s.store.SetVerificationFlags(s.ctx, userID, want))

		got, err := s.store.GetVerificationFlags(s.ctx, userID)
		s.Require().NoError(err)
		s.True(got.FullyVerified)
	})
}

func (s *PostgresUserStoreSuite) TestSubscription() {
	userID := s.newUser()

	s.Run("absent user returns nil", func() {
		sub, err := s.store.GetSubscription(s.ctx, userID)
		s.Require().NoError(err)
		s.Nil(sub)
	})

	s.Run("roundtrip", func() {
		paidAt := time.Now().UTC().Truncate(time.Microsecond)
		want := models.Subscription{Tier: models.TierStandard, Status: models.SubscriptionActive, LastPaymentAt: &paidAt}
		s.Require().NoError(s.store.SetSubscription(s.ctx, userID, want))

		got, err := s.store.GetSubscription(s.ctx, userID)
		s.Require().NoError(err)
		s.Require().NotNil(got)
		s.Equal(models.TierStandard, got.Tier)
		s.Equal(models.SubscriptionActive, got.Status)
		s.Require().NotNil(got.LastPaymentAt)
		s.True(got.LastPaymentAt.Equal(paidAt))
	})

	s.Run("flag write does not clobber the subscription", func() {
		s.Require().NoError(s.store.SetVerificationFlags(s.ctx, userID, models.VerificationFlags{Email: true}))

		got, err := s.store.GetSubscription(s.ctx, userID)
		s.Require().NoError(err)
		s.Require().NotNil(got)
		s.Equal(models.TierStandard, got.Tier)
	})

	s.Run("downgrade persists", func() {
		got, err := s.store.GetSubscription(s.ctx, userID)
		s.Require().NoError(err)
		got.Tier = models.TierFree
		got.Status = models.SubscriptionInactive
		s.Require().NoError(s.store.SetSubscription(s.ctx, userID, *got))

		reread, err := s.store.GetSubscription(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(models.TierFree, reread.Tier)
		s.Equal(models.SubscriptionInactive, reread.Status)
	})
}

func (s *PostgresUserStoreSuite) TestListSubscribed() {
	subscribed := s.newUser()
	flagsOnly := s.newUser()

	paidAt := time.Now().UTC()
	s.Require().NoError(s.store.SetSubscription(s.ctx, subscribed, models.Subscription{
		Tier: models.TierPremium, Status: models.SubscriptionActive, LastPaymentAt: &paidAt,
	}))
	s.Require().NoError(s.store.SetVerificationFlags(s.ctx, flagsOnly, models.VerificationFlags{Email: true}))

	ids, err := s.store.ListSubscribed(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(ids, 1)
	s.Equal(subscribed, ids[0])
}
