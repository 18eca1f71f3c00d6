package callfsm

// State is the lifecycle position of a single transaction.
type State string

const (
	StateIdle      State = "idle"
	StateRinging   State = "ringing"
	StateAnswered  State = "answered"
	StateBridging  State = "bridging"
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Terminal reports whether s ends the transaction. Terminal transactions
// are evicted from the session store.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}
