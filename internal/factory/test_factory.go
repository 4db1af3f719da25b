package factory

import (
	"time"

	"github.com/rpsarena/rps-arena-go/internal/dependencies/mocks"
	"github.com/rpsarena/rps-arena-go/internal/services/auth"
	"github.com/rpsarena/rps-arena-go/internal/storage/memory"
	"github.com/rpsarena/rps-arena-go/internal/testutil"
)

// TestApp wraps App with mockable dependencies for testing
type TestApp struct {
	*App
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App with memory storage and mock dependencies
func NewTestApp() *TestApp {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rnd := mocks.NewMockRandom()

	app := newWithDependencies(
		memory.New(),
		clk,
		rnd,
		auth.DefaultConfig(),
		time.Minute,
		testutil.NopLogger(),
	)

	return &TestApp{
		App:        app,
		MockClock:  clk,
		MockRandom: rnd,
	}
}
