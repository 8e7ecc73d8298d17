// Package printer manages a control session with a network 3D printer.
//
// A Session owns one TCP connection and runs the command exchanges and file
// transfers defined by package protocol over it.
//
// # Lifecycle
//
// Sessions move through three states:
//
//	Disconnected ──Connect──▶ Connecting ──warm-up ok──▶ Ready
//	     ▲                        │                        │
//	     └──────── failure ───────┘◀──────── Close ────────┘
//
// Entering Ready always issues one status query first: the printer firmware
// ignores every other command until it has been polled once. Sessions never
// reconnect on their own.
//
// # Usage Example
//
//	session, err := printer.Dial(ctx, "192.168.1.50")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	temp, err := session.QueryTemperature(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(temp.Extruder)
//
//	if err := session.StoreFile(ctx, "benchy.gx", ""); err != nil {
//	    log.Fatal(err)
//	}
//	if err := session.PrintFile(ctx, "benchy.gx"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Cancellation
//
// Reads from the printer have no timeout of their own. Every operation takes
// a context; when it is cancelled the connection is closed abruptly (the
// protocol has no cancel command) and the session returns to Disconnected.
//
// # Thread Safety
//
// A Session is safe for concurrent use, but the protocol is strictly one
// command at a time: concurrent callers are serialized for the duration of
// a full exchange, including an entire file transfer.
package printer
