// Package fsm is the replicated state of the system database's trigger
// registry.
//
// Every mutation issued by the lifecycle coordinator on the leader becomes a
// TriggerCommand entry in the raft log. Each replica applies the entry to its
// own bbolt file, so all replicas converge on the same set of definitions:
//
//	coordinator.Install
//	  -> RaftStore builds INSTALL, raft.Apply
//	  -> FSM.Apply on every node: PutTx + applied index, one bbolt tx
//	  -> ApplyResult returned to the leader's caller
//	  -> change callbacks invalidate dispatcher caches on every node
//
// Snapshots are a copy of the bbolt file. The applied index stored next to
// the records lets a restarted node skip entries it already folded in.
package fsm
