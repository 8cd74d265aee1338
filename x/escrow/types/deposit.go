package types

import (
	"encoding/json"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Source is where deposited value is drawn from.
type Source uint8

const (
	SourceInvalid Source = 0
	SourceBalance Source = 1
	SourceGrant   Source = 2
)

func (s Source) String() string {
	switch s {
	case SourceBalance:
		return "balance"
	case SourceGrant:
		return "grant"
	default:
		return "invalid"
	}
}

// ParseSource parses the string form of a deposit source.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "balance":
		return SourceBalance, nil
	case "grant":
		return SourceGrant, nil
	default:
		return SourceInvalid, fmt.Errorf("unknown deposit source %q", s)
	}
}

// ParseSources parses a comma separated, ordered source list.
func ParseSources(s string) ([]Source, error) {
	var sources []Source
	for _, part := range strings.Split(s, ",") {
		src, err := ParseSource(part)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Source) UnmarshalJSON(bz []byte) error {
	var str string
	if err := json.Unmarshal(bz, &str); err != nil {
		return err
	}
	parsed, err := ParseSource(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Deposit describes an amount and the ordered sources it may be drawn from.
// Sources are tried left to right.
type Deposit struct {
	Amount  sdk.Coin `json:"amount"`
	Sources []Source `json:"sources"`
}

// NewDeposit builds a deposit descriptor.
func NewDeposit(amount sdk.Coin, sources ...Source) Deposit {
	return Deposit{Amount: amount, Sources: sources}
}

// ValidateBasic performs stateless checks.
func (d Deposit) ValidateBasic() error {
	if !d.Amount.IsValid() || !d.Amount.IsPositive() {
		return ErrInvalidDeposit.Wrapf("amount must be positive, got %s", d.Amount)
	}
	if len(d.Sources) == 0 {
		return ErrInvalidSourceSet.Wrap("no deposit sources")
	}
	seen := make(map[Source]bool, len(d.Sources))
	for _, src := range d.Sources {
		if src != SourceBalance && src != SourceGrant {
			return ErrInvalidSourceSet.Wrapf("unknown source %d", src)
		}
		if seen[src] {
			return ErrInvalidSourceSet.Wrapf("duplicate source %s", src)
		}
		seen[src] = true
	}
	return nil
}

// HasSource reports whether src is one of the deposit's sources.
func (d Deposit) HasSource(src Source) bool {
	for _, s := range d.Sources {
		if s == src {
			return true
		}
	}
	return false
}

// Draw is one planned withdrawal from a deposit source.
// Granter is set only for grant draws; the funds then leave the granter's account.
type Draw struct {
	Source  Source   `json:"source"`
	Payer   string   `json:"payer"`
	Granter string   `json:"granter,omitempty"`
	Amount  sdk.Coin `json:"amount"`
}

// From returns the address the draw is paid from.
func (d Draw) From() string {
	if d.Source == SourceGrant {
		return d.Granter
	}
	return d.Payer
}

// ResolvedFunding is the full plan for covering a deposit.
type ResolvedFunding struct {
	Draws []Draw   `json:"draws"`
	Total sdk.Coin `json:"total"`
}

// AmountFrom sums the draws taken from the given source.
func (r ResolvedFunding) AmountFrom(src Source) sdkmath.Int {
	total := sdkmath.ZeroInt()
	for _, d := range r.Draws {
		if d.Source == src {
			total = total.Add(d.Amount.Amount)
		}
	}
	return total
}

// Funds converts the plan into account provenance entries.
func (r ResolvedFunding) Funds() []Fund {
	funds := make([]Fund, 0, len(r.Draws))
	for _, d := range r.Draws {
		funds = append(funds, Fund{Source: d.Source, Depositor: d.From(), Amount: d.Amount})
	}
	return funds
}
