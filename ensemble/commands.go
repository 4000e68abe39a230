// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import "context"

// cmd is one entry on the supervisor's command queue. The supervisor is
// the sole consumer; every public ControlHandle operation builds one of
// these closures (already bound to its own reply channel and arguments)
// and enqueues it, which is what gives the loop strict FIFO processing
// without needing a tagged command-kind enum: dispatch is just "call it".
// Returning true tells the loop to stop after this command (Shutdown).
type cmd func(ctx context.Context) (stop bool)
