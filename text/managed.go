// Copyright 2026 The slat Authors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package text

import "weak"

// Managed is the engine's non-owning view of caller-owned Text. It resolves
// to the text as long as the owner keeps a strong reference; once the owner
// drops it, Resolve returns nil and the engine skips the slot. No explicit
// deregistration exists, and none is needed.
type Managed struct {
	ref weak.Pointer[Text]
}

func NewManaged(t *Text) Managed {
	return Managed{ref: weak.Make(t)}
}

// Resolve returns the underlying text, or nil if the owner has dropped it.
func (m Managed) Resolve() *Text {
	return m.ref.Value()
}
