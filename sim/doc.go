// Package sim implements a discrete-event simulation engine: a clock and
// future event chain, a cooperative process model for entities, and
// capacity-bounded queues with admission, priority, and statistics.
//
// A model describes its scenario by implementing Model and Entity. Entity
// scripts run against the suspension primitives on Proc (Delay, Enter,
// Leave, DelayOrWait) while the Simulation advances simulated time from one
// event to the next. One run is fully deterministic: events are processed in
// (due time, priority, insertion order), and no two scripts ever execute at
// the same time.
package sim
