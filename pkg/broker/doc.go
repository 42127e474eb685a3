// Package broker implements an in-memory session presence broker with
// synchronous event fan-out.
//
// The broker owns a table of online users keyed by user name. Login and
// Logout mutations are serialized through a single-slot gate: each one
// acquires the gate, simulates a bounded random latency (modeling an I/O
// round trip), mutates the table, notifies observers, and releases.
// RecordAction bypasses the gate entirely and may interleave freely with
// mutations and with other actions.
//
// Observers are plain callbacks invoked synchronously, in registration
// order, from inside the emitting operation. There is no queue between
// emission and delivery: a slow observer slows the operation that
// triggered it, and a panicking observer fails it.
//
// Basic usage:
//
//	b := broker.New()
//	sub := b.Subscribe(broker.KindLogin, func(ev broker.Event) {
//		fmt.Println(ev.UserName, "logged in")
//	})
//	defer sub.Cancel()
//
//	if err := b.Login(ctx, "alice"); err != nil {
//		// handle error
//	}
//	fmt.Println(b.OnlineCount())
package broker
