// Package aspect provides dynamic aspect weaving for Go: pre-call hooks (preludes),
// post-call hooks (encores), error handlers and call-wrapping "around" advice can be
// attached to the members of a class without touching the class definition.
//
// Interception happens at attribute-resolution granularity. A Class declares its members;
// every lookup on an Object goes through the Resolver installed on its class. Weaving a
// class installs a Resolver that wraps methods and functions so calling them consults the
// Advice registered for their Target. Unweaving reinstalls the original Resolver, recorded
// once per class in a WeavingState.
//
// Key types:
//   - Class, Object, Attribute: the interceptable object model
//   - Target: a comparable reference to a member slot, the key into advice
//   - Advice: ordered preludes, encores, error handlers and around wrappers for one Target
//   - AdviceBuilder: fluent registry of Advice, applied with one Weave per class
//   - Weaver, WeavingState: install and remove interception
//
// Common usage pattern:
//
//	account := aspect.NewClass("Account").
//		Method("Withdraw", func(ctx context.Context, self any, args aspect.Args) (any, error) {
//			amount, err := aspect.Arg[int](args, 0)
//			if err != nil {
//				return nil, err
//			}
//			return self.(*Account).Withdraw(amount)
//		})
//
//	weaver, err := aspect.NewWeaver(aspect.NewWeavingState())
//	if err != nil {
//		// handle error
//	}
//
//	err = aspect.NewAdviceBuilder().
//		AddPrelude(account.Target("Withdraw"), auditWithdrawal).
//		AddAround(account.Target("Withdraw"), retryOnConflict).
//		Apply(weaver)
//
//	obj := account.New(&Account{Balance: 100})
//	result, err := obj.Call(ctx, "Withdraw", 5)
//
//	weaver.UnweaveAll()
//
// Error handling: prelude and encore errors reach the caller unchanged. Errors escaping the
// around chain go to the error handlers; without handlers they reach the caller unchanged.
// Handlers run in order; the first one returning a non-nil error stops handling and that error
// is returned, and if all return nil the error is suppressed and the call returns (nil, nil).
package aspect
