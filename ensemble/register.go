// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import "github.com/coriolis-labs/ensemble/ensemble/service"

// Register adds one service descriptor to a Builder, tagged with its
// Message type M for readability at the call site:
//
//	ensemble.Register[PingMessage](builder, service.Descriptor{...})
//
// M itself never appears in Descriptor because the container underneath
// is type-erased (§9's "typed replies over a single command channel"):
// the buffer it allocates is a chan any regardless, and the type only
// matters again when a caller downcasts through Relay[M] or Inbox[M].
// Passing the wrong M here and a different one to Relay later is a
// programming error the same way it would be in the original design —
// caught by a panic on first use, not by the type system.
func Register[M any](b *Builder, d service.Descriptor) *Builder {
	return b.Register(d)
}
