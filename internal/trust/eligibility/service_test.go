package eligibility

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"trustplane/internal/trust/models"
	"trustplane/internal/trust/quota"
	docstore "trustplane/internal/trust/store/document"
	usagestore "trustplane/internal/trust/store/usage"
	userstore "trustplane/internal/trust/store/user"
	"trustplane/internal/trust/verification"
	id "trustplane/pkg/domain"
	"trustplane/pkg/platform/tx"
	"trustplane/pkg/requestcontext"
)

type EligibilityServiceSuite struct {
	suite.Suite
	verification *verification.Service
	quota        *quota.Service
	usage        *usagestore.InMemoryUsageStore
	service      *Service
	now          time.Time
	ctx          context.Context
}

func TestEligibilityServiceSuite(t *testing.T) {
	suite.Run(t, new(EligibilityServiceSuite))
}

func (s *EligibilityServiceSuite) SetupTest() {
	users := userstore.NewInMemoryUserStore()
	documents := docstore.NewInMemoryDocumentStore()
	s.usage = usagestore.NewInMemoryUsageStore()
	s.now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	var err error
	s.verification, err = verification.New(documents, users, tx.NewSerialRunner())
	s.Require().NoError(err)
	s.quota, err = quota.New(users, s.usage)
	s.Require().NoError(err)

	s.service, err = New(s.verification, s.quota)
	s.Require().NoError(err)
}

func (s *EligibilityServiceSuite) newUser() id.UserID {
	userID, err := id.ParseUserID(uuid.NewString())
	s.Require().NoError(err)
	return userID
}

func (s *EligibilityServiceSuite) TestNew() {
	s.Run("nil verification service returns error", func() {
		_, err := New(nil, s.quota)
		s.Error(err)
	})

	s.Run("nil quota service returns error", func() {
		_, err := New(s.verification, nil)
		s.Error(err)
	})
}

func (s *EligibilityServiceSuite) TestCanCreateListing() {
	s.Run("fresh user may post on the free tier", func() {
		check, err := s.service.CanCreateListing(s.ctx, s.newUser())
		s.Require().NoError(err)
		s.True(check.CanPost)
		s.Equal(models.TierFree, check.Tier)
	})

	s.Run("exhausted quota denies", func() {
		userID := s.newUser()
		for range 3 {
			s.Require().NoError(s.usage.RecordListing(s.ctx, userID, s.now.Add(-time.Hour)))
		}

		check, err := s.service.CanCreateListing(s.ctx, userID)
		s.Require().NoError(err)
		s.False(check.CanPost)
		s.NotEmpty(check.Message)
	})
}

func (s *EligibilityServiceSuite) TestIsTrustedForAction() {
	userID := s.newUser()

	s.Run("none level always passes", func() {
		trusted, err := s.service.IsTrustedForAction(s.ctx, userID, models.TrustNone)
		s.Require().NoError(err)
		s.True(trusted)
	})

	s.Run("phone level requires confirmed phone", func() {
		trusted, err := s.service.IsTrustedForAction(s.ctx, userID, models.TrustPhone)
		s.Require().NoError(err)
		s.False(trusted)

		_, err = s.service.ConfirmPhone(s.ctx, userID)
		s.Require().NoError(err)

		trusted, err = s.service.IsTrustedForAction(s.ctx, userID, models.TrustPhone)
		s.Require().NoError(err)
		s.True(trusted)
	})

	s.Run("identity level requires id and facial", func() {
		doc, err := s.service.SubmitDocument(s.ctx, userID, models.DocTypePassport, "s3://docs/passport")
		s.Require().NoError(err)
		_, err = s.service.ReviewDocument(s.ctx, doc.ID, models.DecisionApprove, "")
		s.Require().NoError(err)

		trusted, err := s.service.IsTrustedForAction(s.ctx, userID, models.TrustIdentity)
		s.Require().NoError(err)
		s.False(trusted, "facial still missing")

		doc, err = s.service.SubmitDocument(s.ctx, userID, models.DocTypeFacialPhoto, "s3://docs/face")
		s.Require().NoError(err)
		_, err = s.service.ReviewDocument(s.ctx, doc.ID, models.DecisionApprove, "")
		s.Require().NoError(err)

		trusted, err = s.service.IsTrustedForAction(s.ctx, userID, models.TrustIdentity)
		s.Require().NoError(err)
		s.True(trusted)
	})

	s.Run("full level requires the aggregate", func() {
		trusted, err := s.service.IsTrustedForAction(s.ctx, userID, models.TrustFull)
		s.Require().NoError(err)
		s.False(trusted)

		_, err = s.service.ConfirmEmail(s.ctx, userID)
		s.Require().NoError(err)
		doc, err := s.service.SubmitDocument(s.ctx, userID, models.DocTypeLease, "s3://docs/lease")
		s.Require().NoError(err)
		_, err = s.service.ReviewDocument(s.ctx, doc.ID, models.DecisionApprove, "")
		s.Require().NoError(err)

		trusted, err = s.service.IsTrustedForAction(s.ctx, userID, models.TrustFull)
		s.Require().NoError(err)
		s.True(trusted)
	})

	s.Run("invalid level rejected", func() {
		_, err := s.service.IsTrustedForAction(s.ctx, userID, models.TrustLevel("vip"))
		s.Error(err)
	})
}

func (s *EligibilityServiceSuite) TestForwarding() {
	userID := s.newUser()

	s.Run("payment flows through to quota status", func() {
		_, err := s.service.ApplyPayment(s.ctx, userID, models.TierPremium, s.now)
		s.Require().NoError(err)

		status, err := s.service.QuotaStatus(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(models.TierPremium, status.Tier)
		s.Equal(50, status.RemainingPosts)
	})

	s.Run("progress reflects ledger activity", func() {
		_, err := s.service.ConfirmEmail(s.ctx, userID)
		s.Require().NoError(err)

		progress, err := s.service.VerificationProgress(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(1, progress.CompletedCount)
		s.True(progress.PerCategory[models.CategoryEmail])
	})
}
