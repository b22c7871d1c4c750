// Command swapsim replays a YAML market scenario against the in-process
// ledger emulator: it funds wallets, registers them, opens an order and runs
// fills, escrow settlement and close, logging every accepted transition.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"openswap/config"
	"openswap/core/types"
	"openswap/crypto"
	"openswap/ledger"
	"openswap/native/escrow"
	"openswap/native/identity"
	"openswap/native/swap"
	"openswap/observability/logging"
	"openswap/storage"
)

const walletDomain = "openswap.sim.wallet"

// faucetCoins is what every wallet gets on top of its scenario balance so
// minimum-at-rest outputs never starve a run.
const faucetCoins = 20_000_000

func main() {
	configPath := flag.String("config", "swapsim.toml", "protocol parameter file")
	scenarioPath := flag.String("scenario", "scenario.yaml", "scenario file")
	persist := flag.Bool("persist", false, "store records in LevelDB under the configured data dir")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup("swapsim", cfg.NetworkName)

	scenario, err := LoadScenario(*scenarioPath)
	if err != nil {
		logger.Error("load scenario", "error", err)
		os.Exit(1)
	}

	var db storage.Database
	if *persist {
		db, err = storage.NewLevelDB(filepath.Join(cfg.DataDir, "swapsim"))
		if err != nil {
			logger.Error("open leveldb", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		db = storage.NewMemDB()
	}

	if err := run(logger, cfg, scenario, ledger.NewEmulator(db)); err != nil {
		logger.Error("scenario failed", "error", err)
		os.Exit(1)
	}
	logger.Info("scenario complete", "name", scenario.Name)
}

type sim struct {
	log     *slog.Logger
	cfg     *config.Config
	em      *ledger.Emulator
	arbiter crypto.Address
	// tokens maps wallet name to its membership token name.
	tokens map[string]string
	// addrs maps wallet name to its address.
	addrs map[string]crypto.Address
}

func run(logger *slog.Logger, cfg *config.Config, scenario *Scenario, em *ledger.Emulator) error {
	s := &sim{
		log:     logger,
		cfg:     cfg,
		em:      em,
		arbiter: walletAddress("arbiter"),
		tokens:  make(map[string]string),
		addrs:   make(map[string]crypto.Address),
	}

	goods := types.AssetID{
		Policy: crypto.DerivePolicyID("openswap.sim.goods", s.arbiter),
		Name:   scenario.Order.Asset,
	}
	if err := s.fund(scenario, goods); err != nil {
		return err
	}
	if err := s.register(scenario); err != nil {
		return err
	}

	seller := s.addrs[scenario.Seller.Name]
	swapCfg := &swap.SwapConfig{
		Asked:           types.NativeAsset,
		Offered:         goods,
		BeaconPolicy:    swap.DeriveBeaconPolicy(s.arbiter),
		Seller:          seller,
		EscrowEnabled:   scenario.Order.Escrow,
		UserTokenPolicy: identity.Policy(s.arbiter),
	}
	escrowCfg := &escrow.EscrowConfig{
		Buyer:   s.addrs[scenario.Buyers[0].Name],
		Seller:  seller,
		Arbiter: s.arbiter,
	}
	if scenario.Order.Escrow {
		swapCfg.EscrowAddress = escrowCfg.Address()
	}

	engine := swap.NewEngine(em, swap.Params{
		MinAtRest:     cfg.MinAtRest,
		MinChange:     cfg.MinChange,
		EscrowDeposit: cfg.EscrowDeposit,
	}, s.arbiter)

	if err := s.open(engine, swapCfg, scenario); err != nil {
		return err
	}
	orderIDs, err := s.fill(engine, swapCfg, scenario)
	if err != nil {
		return err
	}
	if scenario.Approve && len(orderIDs) > 0 {
		if err := s.settle(escrowCfg, orderIDs); err != nil {
			return err
		}
	}
	if scenario.Close {
		t, err := engine.Close(swapCfg)
		if err != nil {
			return err
		}
		if err := s.submit("close", t); err != nil {
			return err
		}
	}
	return nil
}

// fund seeds each wallet with its scenario coins plus the faucet margin, and
// hands the seller the goods it will offer.
func (s *sim) fund(scenario *Scenario, goods types.AssetID) error {
	wallets := append([]Wallet{scenario.Seller}, scenario.Buyers...)
	for _, w := range wallets {
		addr := walletAddress(w.Name)
		s.addrs[w.Name] = addr
		value := types.NewValue(w.Coins + faucetCoins)
		if w.Name == scenario.Seller.Name {
			value = value.Add(types.NewAssetValue(goods, scenario.Order.Quantity))
		}
		if _, err := s.em.Faucet(addr, value); err != nil {
			return fmt.Errorf("fund %s: %w", w.Name, err)
		}
		s.log.Info("funded wallet", "wallet", w.Name, "address", addr.String(), "value", value.String())
	}
	return nil
}

// register mints a membership token for every wallet.
func (s *sim) register(scenario *Scenario) error {
	minter := identity.NewMinter(s.arbiter, s.cfg.MinAtRest)
	wallets := append([]Wallet{scenario.Seller}, scenario.Buyers...)
	for _, w := range wallets {
		nonce := identity.NewNonce()
		addr := s.addrs[w.Name]
		funding, err := s.spendable(addr)
		if err != nil {
			return err
		}
		t, err := minter.MintUserTokens(addr, nonce, 2, funding)
		if err != nil {
			return fmt.Errorf("register %s: %w", w.Name, err)
		}
		if err := s.submit("register", t); err != nil {
			return fmt.Errorf("register %s: %w", w.Name, err)
		}
		s.tokens[w.Name] = identity.TokenName(addr, nonce)
	}
	return nil
}

func (s *sim) open(engine *swap.Engine, cfg *swap.SwapConfig, scenario *Scenario) error {
	seller := scenario.Seller.Name
	funding, err := s.funding(seller)
	if err != nil {
		return err
	}
	asked := types.NewValue(scenario.Order.Price)
	offered := types.NewAssetValue(cfg.Offered, scenario.Order.Quantity)
	t, err := engine.Init(cfg, asked, offered, s.tokens[seller], funding)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	return s.submit("init", t)
}

// fill runs the scenario's fills. A rejected submission means another fill
// spent the order record first; the swap is rebuilt from a fresh view.
func (s *sim) fill(engine *swap.Engine, cfg *swap.SwapConfig, scenario *Scenario) ([]escrow.OrderID, error) {
	var orderIDs []escrow.OrderID
	for _, f := range scenario.Fills {
		buyer := s.addrs[f.Buyer]
		payment := types.NewValue(f.Payment)
		var result *swap.SwapResult
		for attempt := 1; ; attempt++ {
			funding, err := s.funding(f.Buyer)
			if err != nil {
				return nil, err
			}
			nonce := crypto.DeriveID("openswap.sim.nonce", []byte(uuid.NewString()))
			result, err = engine.Swap(cfg, buyer, payment, s.tokens[f.Buyer], nonce, funding)
			if err != nil {
				return nil, fmt.Errorf("swap by %s: %w", f.Buyer, err)
			}
			err = s.submit("swap", result.Transition)
			if err == nil {
				break
			}
			if !errors.Is(err, ledger.ErrRejected) || attempt >= 3 {
				return nil, fmt.Errorf("swap by %s: %w", f.Buyer, err)
			}
			s.log.Warn("stale view, rebuilding swap", "buyer", f.Buyer, "attempt", attempt)
		}
		s.log.Info("filled",
			"buyer", f.Buyer,
			"bought", result.Details.Bought,
			"remaining", result.Details.Remaining,
			"change", result.Details.Change)
		if cfg.EscrowEnabled {
			orderIDs = append(orderIDs, result.OrderID)
		}
	}
	return orderIDs, nil
}

func (s *sim) settle(cfg *escrow.EscrowConfig, orderIDs []escrow.OrderID) error {
	engine := escrow.NewEngine(s.em, escrow.Params{RefundDelay: s.cfg.RefundDelay})
	for _, id := range orderIDs {
		t, err := engine.Approve(cfg, id)
		if err != nil {
			return fmt.Errorf("approve %s: %w", id, err)
		}
		if err := s.submit("approve", t); err != nil {
			return fmt.Errorf("approve %s: %w", id, err)
		}
	}
	return nil
}

func (s *sim) funding(wallet string) (*swap.Funding, error) {
	records, err := s.spendable(s.addrs[wallet])
	if err != nil {
		return nil, err
	}
	return &swap.Funding{Records: records, Change: s.addrs[wallet]}, nil
}

// spendable returns the wallet's plain records. Records carrying a datum
// belong to a contract and are never spent as funding.
func (s *sim) spendable(addr crypto.Address) ([]*ledger.Record, error) {
	records, err := s.em.RecordsAt(addr)
	if err != nil {
		return nil, err
	}
	out := records[:0]
	for _, r := range records {
		if len(r.Datum) == 0 {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no spendable records at %s", addr)
	}
	return out, nil
}

func (s *sim) submit(op string, t *ledger.Transition) error {
	txID, err := s.em.Submit(t)
	if err != nil {
		return err
	}
	s.log.Info("transition accepted",
		"op", op,
		"tx", hex.EncodeToString(txID[:]),
		"consumes", len(t.Consumes),
		"produces", len(t.Produces),
		"mints", len(t.Mints))
	return nil
}

func walletAddress(name string) crypto.Address {
	return crypto.DeriveAddress(crypto.AccountPrefix, walletDomain, []byte(name))
}
