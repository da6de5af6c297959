package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/musyaffa-iman/EchoShift/internal/dependencies/mocks"
	"github.com/musyaffa-iman/EchoShift/internal/services/auth"
	"github.com/musyaffa-iman/EchoShift/internal/services/runs"
	"github.com/musyaffa-iman/EchoShift/internal/storage/memory"
	"github.com/musyaffa-iman/EchoShift/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(auth.Config{BcryptCost: bcrypt.MinCost}, runs.Config{})
}

// NewTestAppWithConfig is NewTestApp with explicit service configuration
func NewTestAppWithConfig(authCfg auth.Config, runsCfg runs.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, authCfg, runsCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
