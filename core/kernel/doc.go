// Package kernel ties an actor's mailbox to its execution.
//
// Every message send goes through [Dispatch]: the envelope is enqueued and,
// if this send moved the mailbox from idle to scheduled, a run request is
// posted to the actor's kernel. Any number of concurrent producers cause at
// most one outstanding run request per idle period.
//
// Lifecycle verbs travel on a separate control channel through a [Ref]:
//
//	ref.Schedule(rt)  // RunActor: sweep the mailbox
//	ref.Restart(rt)   // RestartActor
//	ref.Terminate(rt) // TerminateActor
//	ref.SysInit(rt)   // hand the system to the actor once, at startup
//
// Each verb is sent from its own task spawned on the [Runtime], so the
// caller never blocks, even when it runs inside another actor. Verbs sent
// to a terminated actor are silently dropped, and two verbs sent back to
// back are not ordered relative to each other.
//
// # Run loop
//
// [Start] runs a kernel goroutine for one actor. On RunActor it dequeues up
// to Options.Throughput envelopes. When it stops short of the limit it
// resets the scheduled flag and checks the mailbox again: a message that
// slipped in after the last dequeue, but before the reset, was not able to
// schedule a run itself, so the loop does it.
package kernel
