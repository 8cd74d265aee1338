package types

import (
	"encoding/json"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// State is the lifecycle state shared by accounts and payments.
type State uint8

const (
	StateInvalid   State = 0
	StateOpen      State = 1
	StateClosed    State = 2
	StateOverdrawn State = 3
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateOverdrawn:
		return "overdrawn"
	default:
		return "invalid"
	}
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	return s == StateOpen || s == StateClosed || s == StateOverdrawn
}

// ParseState parses the string form of a state.
func ParseState(s string) (State, error) {
	switch strings.ToLower(s) {
	case "open":
		return StateOpen, nil
	case "closed":
		return StateClosed, nil
	case "overdrawn":
		return StateOverdrawn, nil
	default:
		return StateInvalid, fmt.Errorf("unknown state %q", s)
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(bz []byte) error {
	var str string
	if err := json.Unmarshal(bz, &str); err != nil {
		return err
	}
	parsed, err := ParseState(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Fund records where part of an account's credited value came from.
type Fund struct {
	Source    Source   `json:"source"`
	Depositor string   `json:"depositor"`
	Amount    sdk.Coin `json:"amount"`
}

// Account is an escrow fund pool backing a deployment or a bid.
type Account struct {
	ID          AccountID `json:"id"`
	State       State     `json:"state"`
	Balance     sdk.Coin  `json:"balance"`
	Transferred sdk.Coin  `json:"transferred"`
	Refunded    sdk.Coin  `json:"refunded"`
	Funds       []Fund    `json:"funds"`
	CreatedAt   int64     `json:"created_at"`
	// SettledAt is the last height whose payments were settled, zero before the first.
	SettledAt int64 `json:"settled_at"`
}

// NewAccount returns an open account holding the given funds.
func NewAccount(id AccountID, denom string, funds []Fund, height int64) Account {
	acc := Account{
		ID:          id,
		State:       StateOpen,
		Balance:     sdk.NewCoin(denom, sdkmath.ZeroInt()),
		Transferred: sdk.NewCoin(denom, sdkmath.ZeroInt()),
		Refunded:    sdk.NewCoin(denom, sdkmath.ZeroInt()),
		CreatedAt:   height,
	}
	acc.AddFunds(funds)
	return acc
}

// AddFunds credits the balance and merges the provenance entries.
func (a *Account) AddFunds(funds []Fund) {
	for _, f := range funds {
		a.Balance = a.Balance.Add(f.Amount)
		merged := false
		for i := range a.Funds {
			if a.Funds[i].Source == f.Source && a.Funds[i].Depositor == f.Depositor {
				a.Funds[i].Amount = a.Funds[i].Amount.Add(f.Amount)
				merged = true
				break
			}
		}
		if !merged {
			a.Funds = append(a.Funds, f)
		}
	}
}

// TotalFunded is the sum of every amount ever credited to the account.
func (a Account) TotalFunded() sdkmath.Int {
	total := sdkmath.ZeroInt()
	for _, f := range a.Funds {
		total = total.Add(f.Amount.Amount)
	}
	return total
}

// Conserved reports whether balance, transfers and refunds add up to the credited total.
func (a Account) Conserved() bool {
	return a.Balance.Amount.Add(a.Transferred.Amount).Add(a.Refunded.Amount).Equal(a.TotalFunded())
}

// Refund is one payout made when an account closes with a remaining balance.
type Refund struct {
	Depositor string   `json:"depositor"`
	Amount    sdk.Coin `json:"amount"`
}

// RefundPlan splits the remaining balance between depositors, latest fund entry
// first, never returning more to a depositor than that entry credited.
// Entries from the same depositor are combined.
func (a Account) RefundPlan() []Refund {
	remaining := a.Balance.Amount
	var refunds []Refund
	for i := len(a.Funds) - 1; i >= 0 && remaining.IsPositive(); i-- {
		amt := sdkmath.MinInt(remaining, a.Funds[i].Amount.Amount)
		if !amt.IsPositive() {
			continue
		}
		remaining = remaining.Sub(amt)

		merged := false
		for j := range refunds {
			if refunds[j].Depositor == a.Funds[i].Depositor {
				refunds[j].Amount = refunds[j].Amount.AddAmount(amt)
				merged = true
				break
			}
		}
		if !merged {
			refunds = append(refunds, Refund{
				Depositor: a.Funds[i].Depositor,
				Amount:    sdk.NewCoin(a.Balance.Denom, amt),
			})
		}
	}
	return refunds
}

// Payment is a per-block payment stream drawn from an account.
type Payment struct {
	ID        PaymentID `json:"id"`
	Recipient string    `json:"recipient"`
	Rate      sdk.Coin  `json:"rate"`
	Withdrawn sdk.Coin  `json:"withdrawn"`
	State     State     `json:"state"`
}

// NewPayment returns an open payment with nothing withdrawn yet.
func NewPayment(id PaymentID, recipient string, rate sdk.Coin) Payment {
	return Payment{
		ID:        id,
		Recipient: recipient,
		Rate:      rate,
		Withdrawn: sdk.NewCoin(rate.Denom, sdkmath.ZeroInt()),
		State:     StateOpen,
	}
}
