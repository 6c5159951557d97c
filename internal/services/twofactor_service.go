package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/dngun/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	totpIssuer      = "DNGun Marketplace"
	backupCodeCount = 10
)

// validateOpts allows a ±1 time-step clock drift, matching what authenticator
// apps expect.
var validateOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// TwoFactorService manages optional TOTP enrollments and single-use backup
// codes. Backup codes are stored bcrypt-hashed; the plaintext is shown to the
// user exactly once, at generation time.
type TwoFactorService struct {
	enrollments TwoFactorStore
	users       UserStore
	log         *zap.Logger
}

func NewTwoFactorService(enrollments TwoFactorStore, users UserStore, log *zap.Logger) *TwoFactorService {
	return &TwoFactorService{enrollments: enrollments, users: users, log: log}
}

// EnrollmentSetup is returned by BeginEnrollment. The secret and backup codes
// appear here in plaintext once and are never retrievable again.
type EnrollmentSetup struct {
	Secret          string   `json:"secret"`
	ProvisioningURI string   `json:"provisioning_uri"`
	BackupCodes     []string `json:"backup_codes"`
}

// BeginEnrollment generates a fresh secret and backup-code set, replacing any
// prior unconfirmed enrollment. Fails once the enrollment is confirmed.
func (s *TwoFactorService) BeginEnrollment(ctx context.Context, userID uuid.UUID) (*EnrollmentSetup, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapNoRows(err)
	}

	if existing, err := s.enrollments.Get(ctx, userID); err == nil && existing.IsEnabled {
		return nil, ErrAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, err
	}

	enrollment := &models.TwoFactorEnrollment{
		UserID:    userID,
		Secret:    key.Secret(),
		IsEnabled: false,
	}
	if err := s.enrollments.Upsert(ctx, enrollment); err != nil {
		return nil, err
	}

	codes, hashes, err := generateBackupCodes(backupCodeCount)
	if err != nil {
		return nil, err
	}
	if err := s.enrollments.ReplaceBackupCodes(ctx, userID, hashes); err != nil {
		return nil, err
	}

	return &EnrollmentSetup{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		BackupCodes:     codes,
	}, nil
}

// ConfirmEnrollment verifies the first code against the pending secret and
// marks the enrollment enabled.
func (s *TwoFactorService) ConfirmEnrollment(ctx context.Context, userID uuid.UUID, code string) error {
	enrollment, err := s.enrollments.Get(ctx, userID)
	if err != nil {
		return mapNoRows(err)
	}
	if enrollment.IsEnabled {
		return ErrAlreadyEnabled
	}

	ok, err := totp.ValidateCustom(code, enrollment.Secret, time.Now(), validateOpts)
	if err != nil || !ok {
		return ErrInvalidCode
	}

	enabled, err := s.enrollments.Enable(ctx, userID)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrConflict
	}
	return nil
}

// IsEnabled reports whether the user has a confirmed enrollment.
func (s *TwoFactorService) IsEnabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	enrollment, err := s.enrollments.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return enrollment.IsEnabled, nil
}

// VerifyCode checks a TOTP code. Users without an enabled enrollment pass
// trivially: 2FA is not required of them.
func (s *TwoFactorService) VerifyCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	enrollment, err := s.enrollments.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		return false, err
	}
	if !enrollment.IsEnabled {
		return true, nil
	}

	ok, err := totp.ValidateCustom(code, enrollment.Secret, time.Now(), validateOpts)
	if err != nil || !ok {
		return false, nil
	}

	if err := s.enrollments.Touch(ctx, userID); err != nil {
		s.log.Warn("failed to update 2fa last-used timestamp", zap.Error(err))
	}
	return true, nil
}

// VerifyBackupCode consumes a single-use recovery code. A matched code is
// removed before the verification is reported, so a second use always fails.
func (s *TwoFactorService) VerifyBackupCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	enrollment, err := s.enrollments.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if !enrollment.IsEnabled {
		return false, nil
	}

	stored, err := s.enrollments.ListBackupCodes(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, c := range stored {
		if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(code)) != nil {
			continue
		}
		consumed, err := s.enrollments.ConsumeBackupCode(ctx, c.ID)
		if err != nil {
			return false, err
		}
		if !consumed {
			// Lost the race against a concurrent use of the same code.
			return false, nil
		}
		if err := s.enrollments.Touch(ctx, userID); err != nil {
			s.log.Warn("failed to update 2fa last-used timestamp", zap.Error(err))
		}
		return true, nil
	}
	return false, nil
}

// Disable removes the enrollment. The caller must re-prove the account
// password plus current possession of either factor.
func (s *TwoFactorService) Disable(ctx context.Context, userID uuid.UUID, password, code, backupCode string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return mapNoRows(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}

	enrollment, err := s.enrollments.Get(ctx, userID)
	if err != nil {
		return mapNoRows(err)
	}
	if !enrollment.IsEnabled {
		return ErrConflict
	}

	var verified bool
	switch {
	case code != "":
		verified, err = s.VerifyCode(ctx, userID, code)
	case backupCode != "":
		verified, err = s.VerifyBackupCode(ctx, userID, backupCode)
	default:
		return ErrTwoFactorRequired
	}
	if err != nil {
		return err
	}
	if !verified {
		return ErrInvalidCode
	}

	return s.enrollments.Delete(ctx, userID)
}

// RegenerateBackupCodes replaces the remaining set after a valid TOTP code.
func (s *TwoFactorService) RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, code string) ([]string, error) {
	enrollment, err := s.enrollments.Get(ctx, userID)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if !enrollment.IsEnabled {
		return nil, ErrConflict
	}

	ok, err := s.VerifyCode(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCode
	}

	codes, hashes, err := generateBackupCodes(backupCodeCount)
	if err != nil {
		return nil, err
	}
	if err := s.enrollments.ReplaceBackupCodes(ctx, userID, hashes); err != nil {
		return nil, err
	}
	return codes, nil
}

// Status reports whether 2FA is enabled and how many backup codes remain.
func (s *TwoFactorService) Status(ctx context.Context, userID uuid.UUID) (enabled bool, remaining int, err error) {
	enrollment, err := s.enrollments.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, 0, nil
		}
		return false, 0, err
	}
	codes, err := s.enrollments.ListBackupCodes(ctx, userID)
	if err != nil {
		return false, 0, err
	}
	return enrollment.IsEnabled, len(codes), nil
}

const backupCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateBackupCodes returns formatted XXXX-XXXX plaintext codes alongside
// their bcrypt hashes.
func generateBackupCodes(count int) (codes, hashes []string, err error) {
	for i := 0; i < count; i++ {
		raw := make([]byte, 8)
		if _, err := rand.Read(raw); err != nil {
			return nil, nil, err
		}
		for j := range raw {
			raw[j] = backupCodeAlphabet[int(raw[j])%len(backupCodeAlphabet)]
		}
		code := fmt.Sprintf("%s-%s", raw[:4], raw[4:])

		hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return nil, nil, err
		}
		codes = append(codes, code)
		hashes = append(hashes, string(hash))
	}
	return codes, hashes, nil
}
