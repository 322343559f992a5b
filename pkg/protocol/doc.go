// Package protocol implements the binary WebSocket protocol between the
// pagenav thin client and server.
//
// Every WebSocket message is one frame with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHandshake (0x00): ClientHello, then ServerHello
//   - FrameEvent (0x01): key-down and touch events from the client
//   - FramePatches (0x02): Dispatch and Navigate operations for the client
//   - FrameControl (0x03): ping, pong, close
//   - FrameError (0x05): error message
//
// # Encoding
//
// Integers are protobuf-style varints, signed values ZigZag encoded.
// Strings are a varint length followed by UTF-8 bytes. Fixed-width integers
// are big-endian.
//
// Touch event example (touch end on "h3" at 150ms, no attributes):
//
//	[Seq][0x42][len "h3"]  [0 touches][1 changed: id x y][150][0 attrs]
//
// # Handshake
//
//	Client                          Server
//	  │──── ClientHello ────────────>│  (version, page path)
//	  │<──── ServerHello ────────────│  (status, session id, time)
package protocol
