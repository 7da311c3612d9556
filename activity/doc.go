// Package activity implements the engine that drives long-running actor
// activities through a turn-based world.
//
// # Model
//
//   - Kind: immutable descriptor shared by every instance of one activity type
//     (time basis, suspend/resume rules, verb, hooks). Kinds live in a Registry.
//   - Instance: one in-progress activity. A nil or cleared instance is the
//     empty activity and every method on it is a safe no-op.
//   - Scheduler: spends an actor's move budget on its current instance once
//     per turn, runs the kind's hooks, pauses exhausted actors, and restores
//     backlogged work when an activity ends.
//
// # Usage
//
//	reg := activity.NewRegistry()
//	dig, _ := reg.Register(activity.KindSpec{
//	    ID:        "ACT_DIG",
//	    TimeBasis: activity.BasedOnSpeed,
//	    Category:  activity.CategoryDig,
//	    Resumable: true,
//	    Verb:      "digging",
//	}, nil)
//	reg.Register(activity.KindSpec{ID: activity.DefaultRecoveryKind}, recoveryHooks)
//
//	sched, err := activity.NewScheduler(reg, activity.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//
//	actor.SetActivity(activity.New(dig, 1000))
//	for {
//	    if sched.DoTurn(actor) == activity.OutcomeIdle {
//	        break
//	    }
//	}
//
// # Status lines
//
// A StatusLine per actor renders the instance's progress message after each
// turn and stores it in a shared StatusHandler, which servers query for the
// current state of every actor.
package activity
