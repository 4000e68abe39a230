// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

// settingsCell is the latest-value broadcast of one service's settings.
// The supervisor is the sole writer (on an update_settings command);
// readers are the running service body and the operator constructor.
type settingsCell struct {
	w *watcher[any]
}

func newSettingsCell(initial any) *settingsCell {
	return &settingsCell{w: newWatcher(initial)}
}

func (c *settingsCell) set(v any) { c.w.set(v) }
func (c *settingsCell) get() any  { return c.w.get() }

func (c *settingsCell) reader() func() any {
	return c.w.get
}
