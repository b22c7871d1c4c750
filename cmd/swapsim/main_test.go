package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"openswap/config"
	"openswap/ledger"
	"openswap/storage"
)

func TestRunEscrowScenario(t *testing.T) {
	scenario, err := LoadScenario(writeScenario(t, sampleScenario))
	require.NoError(t, err)

	cfg := &config.Config{
		MinAtRest:     config.DefaultMinAtRest,
		MinChange:     config.DefaultMinChange,
		EscrowDeposit: config.DefaultEscrowDeposit,
		RefundDelay:   config.DefaultRefundDelay,
		NetworkName:   config.DefaultNetworkName,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	em := ledger.NewEmulator(storage.NewMemDB())
	require.NoError(t, run(logger, cfg, scenario, em))
}

func TestRunDirectScenario(t *testing.T) {
	scenario, err := LoadScenario(writeScenario(t, sampleScenario))
	require.NoError(t, err)
	scenario.Order.Escrow = false
	scenario.Approve = false

	cfg := &config.Config{
		MinAtRest:     config.DefaultMinAtRest,
		MinChange:     config.DefaultMinChange,
		EscrowDeposit: config.DefaultEscrowDeposit,
		RefundDelay:   config.DefaultRefundDelay,
		NetworkName:   config.DefaultNetworkName,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	em := ledger.NewEmulator(storage.NewMemDB())
	require.NoError(t, run(logger, cfg, scenario, em))
}
