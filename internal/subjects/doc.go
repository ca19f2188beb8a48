// Package subjects holds the fixed subject catalog and the per-user selection
// state machine behind the /setsubjects flow.
//
// A user is Idle until Start creates a pending selection, then Selecting while
// they toggle subjects via keyboard presses, and Idle again after Commit hands
// the chosen set to the persister or Abandon discards it. Commit is
// all-or-nothing: validation or persistence failures leave the pending
// selection intact so the user can retry.
//
// Mutations for one user are serialized on a per-selection mutex; different
// users never contend with each other.
package subjects
