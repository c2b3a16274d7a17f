package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sevenx/marketplace/internal/models"
)

type fakeSMS struct {
	sent []string
	err  error
}

func (f *fakeSMS) Send(_ context.Context, phone, message string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, phone+": "+message)
	return nil
}

type fakeEmail struct {
	sent []string
	err  error
}

func (f *fakeEmail) Send(_ context.Context, to, subject, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+": "+subject)
	return nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.VerificationCode{}))
	return NewService(db)
}

func TestGenerateCode(t *testing.T) {
	s := newTestService(t)

	for i := 0; i < 50; i++ {
		code := s.GenerateCode()
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestStoreAndVerify(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.True(t, s.StoreCode(ctx, "user@example.com", "123456", MethodEmail, PurposeVerification))

	// The plain code never touches the database.
	var record models.VerificationCode
	require.NoError(t, s.DB.First(&record).Error)
	require.NotEqual(t, "123456", record.HashedCode)
	require.Len(t, record.HashedCode, 64)

	require.False(t, s.VerifyCode(ctx, "user@example.com", "000000", PurposeVerification))
	require.True(t, s.VerifyCode(ctx, "user@example.com", "123456", PurposeVerification))
}

func TestVerifyIsSingleUse(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.True(t, s.StoreCode(ctx, "+15551234", "654321", MethodSMS, PurposeVerification))
	require.True(t, s.VerifyCode(ctx, "+15551234", "654321", PurposeVerification))
	require.False(t, s.VerifyCode(ctx, "+15551234", "654321", PurposeVerification))
}

func TestStoreSupersedesPriorCode(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.True(t, s.StoreCode(ctx, "user@example.com", "111111", MethodEmail, PurposeVerification))
	require.True(t, s.StoreCode(ctx, "user@example.com", "222222", MethodEmail, PurposeVerification))

	var count int64
	s.DB.Model(&models.VerificationCode{}).
		Where("identifier = ?", "user@example.com").
		Count(&count)
	require.EqualValues(t, 1, count)

	require.False(t, s.VerifyCode(ctx, "user@example.com", "111111", PurposeVerification))
	require.True(t, s.VerifyCode(ctx, "user@example.com", "222222", PurposeVerification))
}

func TestPurposesAreIsolated(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.True(t, s.StoreCode(ctx, "user@example.com", "111111", MethodEmail, PurposeVerification))
	require.True(t, s.StoreCode(ctx, "user@example.com", "222222", MethodEmail, PurposePasswordReset))

	require.False(t, s.VerifyCode(ctx, "user@example.com", "222222", PurposeVerification))
	require.True(t, s.VerifyCode(ctx, "user@example.com", "111111", PurposeVerification))
	require.True(t, s.VerifyCode(ctx, "user@example.com", "222222", PurposePasswordReset))
}

func TestVerifyExpiry(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.Now = func() time.Time { return issued }
	require.True(t, s.StoreCode(ctx, "user@example.com", "123456", MethodEmail, PurposeVerification))

	// Just inside the window still verifies.
	s.Now = func() time.Time { return issued.Add(10*time.Minute - time.Second) }
	require.True(t, s.VerifyCode(ctx, "user@example.com", "123456", PurposeVerification))

	s.Now = func() time.Time { return issued }
	require.True(t, s.StoreCode(ctx, "other@example.com", "123456", MethodEmail, PurposeVerification))

	// At the boundary the code is already dead.
	s.Now = func() time.Time { return issued.Add(10 * time.Minute) }
	require.False(t, s.VerifyCode(ctx, "other@example.com", "123456", PurposeVerification))
}

func TestFailedAttemptsAreCounted(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.True(t, s.StoreCode(ctx, "user@example.com", "123456", MethodEmail, PurposeVerification))
	require.False(t, s.VerifyCode(ctx, "user@example.com", "000000", PurposeVerification))
	require.False(t, s.VerifyCode(ctx, "user@example.com", "999999", PurposeVerification))

	var record models.VerificationCode
	require.NoError(t, s.DB.First(&record).Error)
	require.Equal(t, 2, record.Attempts)
}

func TestSendSMSDelivery(t *testing.T) {
	s := newTestService(t)
	sms := &fakeSMS{}
	s.SMS = sms

	res := s.SendSMS(context.Background(), "+15551234", PurposeVerification)
	require.True(t, res.Success)
	require.Empty(t, res.DevCode)
	require.Len(t, sms.sent, 1)
}

func TestSendSMSWithoutGateway(t *testing.T) {
	s := newTestService(t)

	// Without a gateway and without dev echo there is no way to hand the
	// user their code, so the call fails.
	res := s.SendSMS(context.Background(), "+15551234", PurposeVerification)
	require.False(t, res.Success)
	require.Empty(t, res.DevCode)

	s.DevEcho = true
	res = s.SendSMS(context.Background(), "+15551234", PurposeVerification)
	require.True(t, res.Success)
	require.Len(t, res.DevCode, 6)
	require.True(t, s.VerifyCode(context.Background(), "+15551234", res.DevCode, PurposeVerification))
}

func TestSendEmailDeliveryFailureFallsBack(t *testing.T) {
	s := newTestService(t)
	s.Email = &fakeEmail{err: errors.New("smtp down")}

	res := s.SendEmail(context.Background(), "user@example.com", PurposeVerification)
	require.False(t, res.Success)

	s.DevEcho = true
	res = s.SendEmail(context.Background(), "user@example.com", PurposeVerification)
	require.True(t, res.Success)
	require.Len(t, res.DevCode, 6)
}

func TestSendEmailPasswordResetSubject(t *testing.T) {
	s := newTestService(t)
	mail := &fakeEmail{}
	s.Email = mail

	res := s.SendEmail(context.Background(), "user@example.com", PurposePasswordReset)
	require.True(t, res.Success)
	require.Len(t, mail.sent, 1)
	require.Contains(t, mail.sent[0], "Password Reset Code")
}
