package kernel

// MsgKind identifies a control verb.
type MsgKind int

const (
	RunActor MsgKind = iota
	RestartActor
	TerminateActor
	SysInit
)

func (k MsgKind) String() string {
	switch k {
	case RunActor:
		return "run"
	case RestartActor:
		return "restart"
	case TerminateActor:
		return "terminate"
	case SysInit:
		return "sys_init"
	default:
		return "unknown"
	}
}

// Msg is a control message. Sys is only set for SysInit.
type Msg struct {
	Kind MsgKind
	Sys  Runtime
}
