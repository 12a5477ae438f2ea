// Package oscbridge routes OSC messages to VLC media players.
//
// # Overview
//
// oscbridge listens for Open Sound Control messages over UDP and forwards
// them as commands to one or more VLC instances through the VLC HTTP
// interface (GET /requests/status.xml?command=...).
//
//	┌─────────────────┐   UDP    ┌─────────────────┐   HTTP   ┌─────────────┐
//	│   OSC sender    ├─────────►│    oscbridge    ├─────────►│  VLC 1..N   │
//	│ (desk, TouchOSC)│          │ listener/router │          │  web iface  │
//	└─────────────────┘          └─────────────────┘          └─────────────┘
//
// # Addressing
//
// Players are numbered from 1 in configuration order:
//   - /<command> is sent to every player concurrently
//   - /<n>/<command> is sent to player n only
//
// # Commands
//
//	play [id]     pl_play, optionally jumping to playlist item id
//	pause         pl_pause
//	stop          pl_stop
//	seek <val>    seek
//	volume <val>  volume
//	fullscreen    fullscreen
//
// Malformed addresses, unknown commands and missing arguments are logged and
// dropped. A player that does not answer within the request timeout never
// holds up the others.
//
// # Usage
//
// Start the bridge for two players sharing one password:
//
//	oscbridge serve --vlc http://10.0.0.20:8080 --vlc http://10.0.0.21:8080 --pwd secret
//
// Send a test message:
//
//	oscbridge send /2/seek 30
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (config.yaml, see oscbridge config init)
//   - Environment variables (OSCBRIDGE_ prefix)
//   - Command line flags
//
// # Admin Endpoints
//
// When admin.listen_addr is set:
//   - GET /health   - Liveness and uptime
//   - GET /metrics  - Prometheus metrics
//   - GET /targets  - Configured players (passwords omitted) and commands
package oscbridge
