// Package statemachine attaches finite-state-machine behavior to a persisted
// document type.
//
// A Machine owns an immutable state table and transition table and a Store
// used to save and look up documents. Each transition names its eligible
// source states (one, a set, or any), a target state, an optional Guard and
// an optional behavior Hook. States may carry a numeric value that is
// mirrored into the document's stateValue field for sorting and comparison,
// plus enter and exit hooks.
//
// # Transition order
//
// Fire applies a transition in a fixed sequence:
//  1. a document without a state receives the default state
//  2. the current state must be an eligible source, else *ErrInvalidTransition
//  3. the document is moved to the target state
//  4. the guard runs and sees the new state; rejection yields *ErrGuardFailed
//  5. the stateValue mirror is recomputed
//  6. the store saves the document; failure yields *ErrPersistenceFailed
//  7. exit hook of the old state, transition behavior, enter hook of the new state
//
// When step 4 or 6 fails the document's state and stateValue are restored
// and no hook runs. The default assignment of step 1 is kept.
//
// # Guards
//
// GuardFunc wraps a predicate whose non-nil error rejects the transition.
// GuardFields runs one FieldCheck per field and collects every non-empty
// reason into validator.ValidationErrors:
//
//	statemachine.GuardFields(map[string]statemachine.FieldCheck[*Article]{
//	    "title": func(ctx context.Context, a *Article) string {
//	        return validator.Reason(validator.Required("title", a.Title))
//	    },
//	})
//
// # Binding
//
// Fire and Transition(name) operate on a document instance; FireByID and
// TransitionByID(name) look the document up first and report ErrNotFound or
// *ErrLookupFailed. StateNames, StateValue and Schema expose the tables for
// validation and persistence layers.
//
// # Usage
//
//	type Article struct {
//	    ID    string `bson:"_id"`
//	    Title string `bson:"title"`
//	    statemachine.Fields `bson:",inline"`
//	}
//
//	func (a *Article) DocumentID() string { return a.ID }
//
//	m := statemachine.NewBuilder[*Article]().
//	    State("draft").Default().Value(0).
//	    State("published").Value(1).
//	    State("archived").Value(2).
//	    Transition("publish").From("draft").To("published").
//	    Transition("archive").From("draft", "published").To("archived").
//	    MustBuild(store, statemachine.WithLogger(log))
//
//	article := m.Init(&Article{ID: "a1", Title: "Hello"})
//	if _, err := m.Fire(ctx, "publish", article); err != nil {
//	    switch {
//	    case statemachine.IsInvalidTransitionError(err):
//	    case statemachine.IsGuardFailedError(err):
//	    case statemachine.IsPersistenceFailedError(err):
//	    }
//	}
//
// Tables can also be declared in YAML with ParseDefinition and attached to a
// Builder together with named Bindings.
//
// # Concurrency
//
// Machine is read-only after construction and may be shared by any number
// of goroutines. Documents are not locked: two concurrent transitions of the
// same document race and the last successful save wins.
package statemachine
