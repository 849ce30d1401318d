// Package game is the turn-based survival simulation: a bounded grid, one
// player, a growing horde of zombies, ground loot and a camp.
//
// # Turn order
//
// The player spends a daily action budget on moves, attacks and looting.
// Spending the last action runs the zombie phase to completion before the
// call returns: every zombie acts once, in spawn order, against the state
// left by the zombies before it. Ending the day is always available during
// the player's turn and refills the budget.
//
// # Randomness
//
// Every roll is drawn from the Source given to New, so a seeded source
// replays a game exactly.
//
// # Events
//
// Each request returns the events it produced, and listeners receive them as
// they happen. Listeners observe; a request made from inside a listener while
// zombies are resolving is rejected with ErrWrongPhase.
package game
