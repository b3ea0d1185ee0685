package aspect_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-aspects-go/aspect"
)

var (
	errInsufficientFunds = errors.New("insufficient funds")
	errValue             = errors.New("x")
)

type account struct {
	balance   int
	withdrawn []int
}

func (a *account) withdraw(amount int) (int, error) {
	if amount > a.balance {
		return 0, errInsufficientFunds
	}

	a.balance -= amount
	a.withdrawn = append(a.withdrawn, amount)

	return a.balance, nil
}

// newAccountClass declares a fresh Account class per test, so tests never share weaving.
func newAccountClass() *aspect.Class {
	return aspect.NewClass("Account").
		Method("Withdraw", func(_ context.Context, self any, args aspect.Args) (any, error) {
			amount, err := aspect.Arg[int](args, 0)
			if err != nil {
				return nil, err
			}

			balance, err := self.(*account).withdraw(amount)
			if err != nil {
				return nil, err
			}

			return balance, nil
		}).
		Method("Fail", func(context.Context, any, aspect.Args) (any, error) {
			return nil, errValue
		}).
		Method("__repr__", func(_ context.Context, self any, _ aspect.Args) (any, error) {
			return fmt.Sprintf("Account(%d)", self.(*account).balance), nil
		}).
		Function("Currency", func(context.Context, aspect.Args) (any, error) {
			return "EUR", nil
		}).
		Value("Bank", "ACME")
}

func givenWeaver(t *testing.T, options ...aspect.Option) *aspect.Weaver {
	t.Helper()

	weaver, err := aspect.NewWeaver(aspect.NewWeavingState(), options...)
	require.NoError(t, err)

	return weaver
}

func givenWovenAccount(t *testing.T, weaver *aspect.Weaver, builder func(class *aspect.Class) *aspect.AdviceBuilder) *aspect.Class {
	t.Helper()

	class := newAccountClass()
	require.NoError(t, builder(class).Apply(weaver))

	return class
}
