package routing

// State is Harold's process-local routing memory. It is owned by the
// projector task: the notifier and router both run inside that task, one
// event at a time, so no locking is needed. It never persists.
type State struct {
	lastRouted     AgentAddress
	lastAwaySource AgentAddress
}

// NewState returns empty routing state.
func NewState() *State {
	return &State{}
}

// SetLastRouted records the agent that last accepted a relayed reply.
func (s *State) SetLastRouted(a AgentAddress) { s.lastRouted = a }

// LastRouted returns the agent that last accepted a relayed reply, or nil.
func (s *State) LastRouted() AgentAddress { return s.lastRouted }

// SetLastAwaySource records the source agent of the last away notification.
func (s *State) SetLastAwaySource(a AgentAddress) { s.lastAwaySource = a }

// LastAwaySource returns the source agent of the last away notification, or nil.
func (s *State) LastAwaySource() AgentAddress { return s.lastAwaySource }
