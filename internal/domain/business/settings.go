package business

import (
	"regexp"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Theme is the UI theme preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// IsValid checks if the theme is valid
func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

// ErrInvalidPIN is returned for any PIN that is not exactly four digits
var ErrInvalidPIN = shared.NewValidationError("Invalid PIN. Please enter exactly 4 digits.")

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// PINHashCost is the bcrypt cost used for app lock PINs
const PINHashCost = 12

// Settings are the per-owner application preferences
type Settings struct {
	shared.OwnedAggregateRoot
	Theme      Theme
	PINEnabled bool
	PINHash    string
}

// NewSettings returns default settings for an owner
func NewSettings(ownerID uuid.UUID) *Settings {
	return &Settings{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Theme:              ThemeLight,
	}
}

// SetTheme changes the theme
func (s *Settings) SetTheme(theme Theme) error {
	if !theme.IsValid() {
		return shared.NewValidationError("Theme must be light or dark")
	}
	s.Theme = theme
	s.Touch()
	s.IncrementVersion()
	return nil
}

// EnablePIN turns on the app lock with a four digit PIN
func (s *Settings) EnablePIN(pin string) error {
	if !pinPattern.MatchString(pin) {
		return ErrInvalidPIN
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), PINHashCost)
	if err != nil {
		return err
	}
	s.PINEnabled = true
	s.PINHash = string(hash)
	s.Touch()
	s.IncrementVersion()
	return nil
}

// DisablePIN turns off the app lock and forgets the PIN
func (s *Settings) DisablePIN() {
	s.PINEnabled = false
	s.PINHash = ""
	s.Touch()
	s.IncrementVersion()
}

// VerifyPIN reports whether pin unlocks the app.
// With the lock disabled every PIN is accepted.
func (s *Settings) VerifyPIN(pin string) bool {
	if !s.PINEnabled {
		return true
	}
	if !pinPattern.MatchString(pin) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.PINHash), []byte(pin)) == nil
}
