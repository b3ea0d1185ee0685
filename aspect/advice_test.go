package aspect_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-aspects-go/aspect"
)

func givenWithdrawAttribute(t *testing.T, acc *account) aspect.Attribute {
	t.Helper()

	attr, err := newAccountClass().New(acc).Attr("Withdraw")
	require.NoError(t, err)

	return attr
}

func Test_Advice_Around_WithoutWrappersCallsTheMember(t *testing.T) {
	// setup
	acc := &account{balance: 50}
	attr := givenWithdrawAttribute(t, acc)
	advice := aspect.NewAdvice(attr.Target())

	// act
	result, err := advice.Around(context.Background(), attr, acc, aspect.Positional(20))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 30, result)
	assert.True(t, advice.IsEmpty())
}

func Test_Advice_Around_WrapperMayCallNextRepeatedly(t *testing.T) {
	// setup
	acc := &account{balance: 50}
	attr := givenWithdrawAttribute(t, acc)
	advice := aspect.NewAdvice(attr.Target()).
		AddAround(func(ctx context.Context, next aspect.NextFunc, _ any, args aspect.Args) (any, error) {
			if _, err := next(ctx, args); err != nil {
				return nil, err
			}
			return next(ctx, args)
		})

	// act
	result, err := advice.Around(context.Background(), attr, acc, aspect.Positional(10))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 30, result)
	assert.Equal(t, []int{10, 10}, acc.withdrawn)
}

func Test_Advice_HandleError_PassesThroughWithoutHandlers(t *testing.T) {
	// setup
	attr := givenWithdrawAttribute(t, &account{})
	advice := aspect.NewAdvice(attr.Target())

	// act
	err := advice.HandleError(context.Background(), attr, nil, errValue)

	// assert
	assert.Same(t, errValue, err)
}

func Test_Advice_Prelude_StopsAtFirstError(t *testing.T) {
	// setup
	attr := givenWithdrawAttribute(t, &account{})
	stop := errors.New("stop")
	secondCalled := false

	advice := aspect.NewAdvice(attr.Target()).
		AddPrelude(func(context.Context, aspect.Attribute, any, aspect.Args) error { return stop }).
		AddPrelude(func(context.Context, aspect.Attribute, any, aspect.Args) error {
			secondCalled = true
			return nil
		})

	// act
	err := advice.Prelude(context.Background(), attr, nil, aspect.Positional())

	// assert
	assert.Same(t, stop, err)
	assert.False(t, secondCalled)
}

func Test_Advice_AddHooks_IgnoresNil(t *testing.T) {
	// setup
	advice := aspect.NewAdvice(newAccountClass().Target("Withdraw"))

	// act
	advice.AddPrelude(nil).AddEncore(nil).AddErrorHandler(nil).AddAround(nil)

	// assert
	assert.True(t, advice.IsEmpty())
}

func Test_Advice_Freeze_IsIndependentOfTheOriginal(t *testing.T) {
	// setup
	var nilAdvice *aspect.Advice
	advice := aspect.NewAdvice(newAccountClass().Target("Withdraw"))

	// act
	frozen := advice.Freeze()
	advice.AddPrelude(noopPrelude)

	// assert
	assert.True(t, frozen.IsEmpty())
	assert.False(t, advice.IsEmpty())
	assert.Nil(t, nilAdvice.Freeze())
}

func Test_Identity_PassesEverythingThrough(t *testing.T) {
	// setup
	ctx := context.Background()
	acc := &account{balance: 5}
	attr := givenWithdrawAttribute(t, acc)

	// act
	result, err := aspect.Identity.Around(ctx, attr, acc, aspect.Positional(2))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, result)
	assert.NoError(t, aspect.Identity.Prelude(ctx, attr, acc, aspect.Positional()))
	assert.NoError(t, aspect.Identity.Encore(ctx, attr, acc, result))
	assert.Same(t, errValue, aspect.Identity.HandleError(ctx, attr, acc, errValue))
}

func Test_Mapping_Lookup_FallsBackToIdentity(t *testing.T) {
	// setup
	class := newAccountClass()
	advice := aspect.NewAdvice(class.Target("Withdraw"))
	mapping := aspect.Mapping{
		class.Target("Withdraw"): advice,
		class.Target("Fail"):     nil,
	}

	// act & assert
	assert.Same(t, advice, mapping.Lookup(class.Target("Withdraw")))
	assert.Equal(t, aspect.Identity, mapping.Lookup(class.Target("Fail")))
	assert.Equal(t, aspect.Identity, mapping.Lookup(class.Target("Currency")))
	assert.Equal(t, aspect.Identity, aspect.Mapping(nil).Lookup(class.Target("Withdraw")))
}

func Test_Target_ComparesByClassAndName(t *testing.T) {
	// setup
	first, second := newAccountClass(), newAccountClass()

	// act & assert
	assert.Equal(t, first.Target("Withdraw"), first.Target("Withdraw"))
	assert.NotEqual(t, first.Target("Withdraw"), second.Target("Withdraw"))
	assert.NotEqual(t, first.Target("Withdraw"), first.Target("Fail"))
	assert.Equal(t, "Account.Withdraw", first.Target("Withdraw").String())
	assert.True(t, aspect.Target{}.IsZero())
	assert.False(t, first.Target("Withdraw").IsZero())
}
