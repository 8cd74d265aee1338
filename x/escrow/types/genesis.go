package types

import "fmt"

// GenesisState is the escrow module's exported state.
type GenesisState struct {
	Params            Params         `json:"params"`
	Accounts          []Account      `json:"accounts"`
	Payments          []Payment      `json:"payments"`
	Grants            []DepositGrant `json:"grants"`
	NextGrantSequence uint64         `json:"next_grant_sequence"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:            DefaultParams(),
		Accounts:          []Account{},
		Payments:          []Payment{},
		Grants:            []DepositGrant{},
		NextGrantSequence: 1,
	}
}

// Validate performs basic genesis state validation returning an error upon any
// failure.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}

	accounts := make(map[string]Account, len(gs.Accounts))
	for i, acc := range gs.Accounts {
		if err := acc.ID.Validate(); err != nil {
			return fmt.Errorf("account %d: %w", i, err)
		}
		key := acc.ID.String()
		if _, dup := accounts[key]; dup {
			return fmt.Errorf("account %d: duplicate id %s", i, key)
		}
		if !acc.State.Valid() {
			return fmt.Errorf("account %s: invalid state", key)
		}
		if acc.Balance.Denom != gs.Params.Denom {
			return fmt.Errorf("account %s: balance denom %q does not match %q", key, acc.Balance.Denom, gs.Params.Denom)
		}
		if acc.Balance.IsNegative() {
			return fmt.Errorf("account %s: negative balance", key)
		}
		if !acc.Conserved() {
			return fmt.Errorf("account %s: balance, transfers and refunds do not match funds", key)
		}
		accounts[key] = acc
	}

	payments := make(map[string]bool, len(gs.Payments))
	for i, p := range gs.Payments {
		if err := p.ID.Validate(); err != nil {
			return fmt.Errorf("payment %d: %w", i, err)
		}
		key := p.ID.String()
		if payments[key] {
			return fmt.Errorf("payment %d: duplicate id %s", i, key)
		}
		payments[key] = true
		acc, ok := accounts[p.ID.AccountID.String()]
		if !ok {
			return fmt.Errorf("payment %s: account does not exist", key)
		}
		if p.State == StateOpen && acc.State != StateOpen {
			return fmt.Errorf("payment %s: open payment on %s account", key, acc.State)
		}
		if p.Withdrawn.Amount.GT(acc.TotalFunded()) {
			return fmt.Errorf("payment %s: withdrawn exceeds account funding", key)
		}
	}

	for i, g := range gs.Grants {
		if err := g.ValidateBasic(); err != nil {
			return fmt.Errorf("grant %d: %w", i, err)
		}
		if g.Sequence >= gs.NextGrantSequence {
			return fmt.Errorf("grant %d: sequence %d not below next sequence %d", i, g.Sequence, gs.NextGrantSequence)
		}
	}

	return nil
}
