package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes one simulated market session: funded wallets, a single
// order, a sequence of fills against it and the closing action.
type Scenario struct {
	Name   string     `yaml:"name"`
	Seller Wallet     `yaml:"seller"`
	Buyers []Wallet   `yaml:"buyers"`
	Order  OrderSpec  `yaml:"order"`
	Fills  []FillSpec `yaml:"fills"`
	// Approve settles every escrow deposit at the end of the session.
	Approve bool `yaml:"approve"`
	// Close retires the order after the fills.
	Close bool `yaml:"close"`
}

// Wallet names a participant and the native coin it starts with.
type Wallet struct {
	Name  string `yaml:"name"`
	Coins int64  `yaml:"coins"`
}

// OrderSpec describes the order the seller opens.
type OrderSpec struct {
	// Price is the asked native-coin amount per unit of the offered asset.
	Price int64 `yaml:"price"`
	// Asset names the offered token class.
	Asset string `yaml:"asset"`
	// Quantity is the offered stock.
	Quantity int64 `yaml:"quantity"`
	// Escrow routes proceeds through the two-phase escrow.
	Escrow bool `yaml:"escrow"`
}

// FillSpec is one buyer spending payment coins against the order.
type FillSpec struct {
	Buyer   string `yaml:"buyer"`
	Payment int64  `yaml:"payment"`
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate rejects scenarios the simulator cannot run.
func (s *Scenario) Validate() error {
	if s.Seller.Name == "" {
		return fmt.Errorf("seller name required")
	}
	if len(s.Buyers) == 0 {
		return fmt.Errorf("at least one buyer required")
	}
	if s.Order.Price <= 0 {
		return fmt.Errorf("order price must be positive, got %d", s.Order.Price)
	}
	if s.Order.Asset == "" {
		return fmt.Errorf("order asset name required")
	}
	if s.Order.Quantity <= 0 {
		return fmt.Errorf("order quantity must be positive, got %d", s.Order.Quantity)
	}
	if s.Order.Escrow && len(s.Buyers) != 1 {
		return fmt.Errorf("escrow scenarios run with exactly one buyer, got %d", len(s.Buyers))
	}
	names := map[string]bool{s.Seller.Name: true}
	for _, b := range s.Buyers {
		if names[b.Name] {
			return fmt.Errorf("duplicate wallet name %q", b.Name)
		}
		names[b.Name] = true
	}
	for _, f := range s.Fills {
		if !names[f.Buyer] || f.Buyer == s.Seller.Name {
			return fmt.Errorf("fill names unknown buyer %q", f.Buyer)
		}
		if f.Payment <= 0 {
			return fmt.Errorf("fill payment must be positive, got %d", f.Payment)
		}
	}
	return nil
}
