// Package callfsm drives a phone call through its lifecycle, one control
// plane event at a time.
//
// Every invocation is stateless from the process's point of view: the
// machine loads whatever the session store knows about the transaction,
// decides exactly one ordered action list for the event, persists the new
// state, and returns. Two invariants shape every branch:
//
//   - The action list is never empty. The control plane drops calls that
//     receive an empty or malformed response, so every path, including
//     unrecognized events, resolves to at least a safe hold action.
//   - A caller never hears dead air while something is failing. Missing
//     join metadata, failed actions, and malformed prior responses all
//     route through Speak or Pause, degrading to a static bridge target
//     when one is configured.
package callfsm
