// Copyright 2026 The go-sdc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mdib

// TransactionKind is the closed set of transaction categories (spec.md
// §4.E: "a transaction is scoped to exactly one of these kinds"). A kind
// gates which descriptor/state Kinds a Tx may touch, except for
// DescriptorModification, which may also touch the states of the
// descriptors it adds or removes (those states have no other transaction
// that could have created them).
type TransactionKind string

const (
	TxDescriptorModification TransactionKind = "DescriptorModification"
	TxMetricStates           TransactionKind = "MetricStates"
	TxAlertStates            TransactionKind = "AlertStates"
	TxComponentStates        TransactionKind = "ComponentStates"
	TxContextStates          TransactionKind = "ContextStates"
	TxOperationalStates      TransactionKind = "OperationalStates"
	TxRealTimeSamples        TransactionKind = "RealTimeSamples"
)

// kindAllowsState reports whether kind's category governs states of the
// given descriptor Kind (spec.md §4.E table of transaction kinds).
func kindAllowsState(kind TransactionKind, k Kind) bool {
	switch kind {
	case TxMetricStates:
		return k.IsMetric() && k != KindRealTimeSampleArrayMetric && k != KindDistributionSampleArrayMetric
	case TxRealTimeSamples:
		return k == KindRealTimeSampleArrayMetric || k == KindDistributionSampleArrayMetric
	case TxAlertStates:
		return k.IsAlert()
	case TxComponentStates:
		switch k {
		case KindMDS, KindVMD, KindChannel, KindSco, KindBattery, KindClock, KindSystemContext:
			return true
		}
		return false
	case TxContextStates:
		return k.IsContext()
	case TxOperationalStates:
		return k.IsOperation()
	}
	return false
}

// Tx is an in-progress transaction against a Store. It is built from a copy
// of the base snapshot's index maps (state.clone()) and mutated in place;
// nothing is visible to readers until Commit swaps the Store's root
// pointer. A Tx must be finished exactly once, by Commit or Abort.
type Tx struct {
	store *Store
	kind  TransactionKind
	base  *state
	work  *state

	touchedDescriptors map[Handle]bool
	touchedStates      map[StateKey]bool

	// touchedContextInstance enforces "at most one association change per
	// context instance per transaction" (spec.md §7 Open Questions,
	// resolved in SPEC_FULL.md §12: one disassociation-then-association
	// pair would be ambiguous to report as a single version bump, so it is
	// rejected outright rather than silently picking one order).
	touchedContextInstance map[Handle]bool

	err      error
	finished bool
}

func (tx *Tx) fail(err error) error {
	if tx.err == nil {
		tx.err = err
	}
	return err
}

// AddDescriptor inserts a new descriptor (and, for multi-state kinds,
// nothing yet — initial states are added separately via AddState, which
// DescriptorModification transactions are permitted to do for descriptors
// created in the same Tx). Only TxDescriptorModification may call this.
func (tx *Tx) AddDescriptor(d *Descriptor) error {
	if tx.kind != TxDescriptorModification {
		return tx.fail(TransactionError(ErrWrongKind, "kind", tx.kind, "op", "AddDescriptor"))
	}
	if _, exists := tx.work.descriptors[d.Handle]; exists {
		return tx.fail(TransactionError(ErrHandleCollision, "handle", d.Handle))
	}
	if d.ParentHandle != "" {
		if _, ok := tx.work.descriptors[d.ParentHandle]; !ok {
			return tx.fail(TransactionError(ErrUnknownHandle, "handle", d.ParentHandle, "role", "parent"))
		}
	}
	cp := d.Clone()
	tx.work.descriptors[d.Handle] = cp
	tx.work.children[d.ParentHandle] = append(tx.work.children[d.ParentHandle], d.Handle)
	tx.touchedDescriptors[d.Handle] = true
	return nil
}

// UpdateDescriptor replaces an existing descriptor's attributes in place.
// Handle and Kind are immutable; callers needing to retype an entity must
// remove and re-add it. ParentHandle may change: that re-parents the
// descriptor elsewhere in the tree (spec.md §3: entities are "re-parented
// through description-modification transactions"), cascading a
// DescriptorVersion bump to every descendant so a consumer's mirror sees
// the structural change reflected down the tree even though descendant
// content itself is untouched (spec.md §4.E "Description-modification
// specifics").
func (tx *Tx) UpdateDescriptor(d *Descriptor) error {
	if tx.kind != TxDescriptorModification {
		return tx.fail(TransactionError(ErrWrongKind, "kind", tx.kind, "op", "UpdateDescriptor"))
	}
	cur, ok := tx.work.descriptors[d.Handle]
	if !ok {
		return tx.fail(TransactionError(ErrUnknownHandle, "handle", d.Handle))
	}
	if cur.Kind != d.Kind {
		return tx.fail(TransactionError(ErrTypeMismatch, "handle", d.Handle))
	}
	if cur.ParentHandle != d.ParentHandle {
		if err := tx.reparent(d.Handle, d.ParentHandle); err != nil {
			return err
		}
	}
	cp := d.Clone()
	tx.work.descriptors[d.Handle] = cp
	tx.touchedDescriptors[d.Handle] = true
	return nil
}

// reparent moves h from its current parent's child list to newParent's. It
// rejects a move to an unknown parent or into h's own subtree (which would
// make the tree unreachable from its root), then cascades a version bump
// to h's descendants, whose DescriptorVersion must advance even though
// their content doesn't (spec.md §4.E).
func (tx *Tx) reparent(h, newParent Handle) error {
	if newParent != "" {
		if _, ok := tx.work.descriptors[newParent]; !ok {
			return tx.fail(TransactionError(ErrUnknownHandle, "handle", newParent, "role", "parent"))
		}
		if tx.isDescendant(h, newParent) {
			return tx.fail(TransactionError(ErrInvariantViolation,
				"reason", "cannot re-parent a descriptor under its own subtree", "handle", h))
		}
	}
	old := tx.work.descriptors[h].ParentHandle
	siblings := tx.work.children[old]
	for i, c := range siblings {
		if c == h {
			tx.work.children[old] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	tx.work.children[newParent] = append(tx.work.children[newParent], h)
	tx.cascadeBump(h)
	return nil
}

// isDescendant reports whether candidate is h itself or lies anywhere in
// h's subtree.
func (tx *Tx) isDescendant(h, candidate Handle) bool {
	if h == candidate {
		return true
	}
	for _, child := range tx.work.children[h] {
		if tx.isDescendant(child, candidate) {
			return true
		}
	}
	return false
}

// cascadeBump marks every descendant of h as touched so Commit bumps each
// one's DescriptorVersion alongside h's own, leaving their content
// unchanged.
func (tx *Tx) cascadeBump(h Handle) {
	for _, child := range tx.work.children[h] {
		tx.touchedDescriptors[child] = true
		tx.cascadeBump(child)
	}
}

// Descriptor returns the working copy of a descriptor, if present, so a
// dispatch-layer caller can inspect attributes (e.g. MetricCategory) before
// deciding whether a requested mutation is even permitted.
func (tx *Tx) Descriptor(h Handle) (*Descriptor, bool) {
	d, ok := tx.work.descriptors[h]
	return d, ok
}

// RemoveDescriptor removes a descriptor and, transitively, every
// descendant descriptor and every state owned by any of them (spec.md
// §4.E: "removing a descriptor removes its whole subtree").
func (tx *Tx) RemoveDescriptor(h Handle) error {
	if tx.kind != TxDescriptorModification {
		return tx.fail(TransactionError(ErrWrongKind, "kind", tx.kind, "op", "RemoveDescriptor"))
	}
	if _, ok := tx.work.descriptors[h]; !ok {
		return tx.fail(TransactionError(ErrUnknownHandle, "handle", h))
	}
	tx.removeSubtree(h)
	return nil
}

func (tx *Tx) removeSubtree(h Handle) {
	for _, child := range tx.work.children[h] {
		tx.removeSubtree(child)
	}
	d := tx.work.descriptors[h]
	delete(tx.work.descriptors, h)
	delete(tx.work.children, h)
	if d != nil && d.ParentHandle != "" {
		siblings := tx.work.children[d.ParentHandle]
		for i, c := range siblings {
			if c == h {
				tx.work.children[d.ParentHandle] = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}
	for key := range tx.work.states {
		if key.Descriptor == h {
			delete(tx.work.states, key)
			tx.touchedStates[key] = true
		}
	}
	tx.touchedDescriptors[h] = true
}

// AddState inserts the initial state of a descriptor that this
// DescriptorModification transaction just created, or of a multi-state
// descriptor gaining a new instance (context states only; every other Kind
// has exactly one pre-existing state slot maintained by its owning
// transaction kind instead).
func (tx *Tx) AddState(s *State) error {
	d, ok := tx.work.descriptors[s.Descriptor]
	if !ok {
		return tx.fail(TransactionError(ErrUnknownHandle, "handle", s.Descriptor))
	}
	if d.Kind != s.Kind {
		return tx.fail(TransactionError(ErrTypeMismatch, "handle", s.Descriptor))
	}
	if !tx.touchedDescriptors[s.Descriptor] && !kindAllowsState(tx.kind, s.Kind) {
		return tx.fail(TransactionError(ErrWrongKind, "kind", tx.kind, "op", "AddState", "handle", s.Descriptor))
	}
	key := s.Key()
	if _, exists := tx.work.states[key]; exists {
		return tx.fail(TransactionError(ErrHandleCollision, "handle", s.Descriptor, "instance", s.Instance))
	}
	if d.Kind.IsContext() && s.Instance != "" {
		if tx.touchedContextInstance[Handle(s.Instance)] {
			return tx.fail(TransactionError(ErrInvariantViolation,
				"reason", "one association change per context instance per transaction", "instance", s.Instance))
		}
		tx.touchedContextInstance[Handle(s.Instance)] = true
	}
	cp := s.Clone()
	tx.work.states[key] = cp
	tx.touchedStates[key] = true
	return nil
}

// UpdateState replaces an existing state in place. A kind-specific
// transaction may only touch states of descriptor Kinds it governs
// (kindAllowsState), except DescriptorModification transactions, which may
// additionally touch states of descriptors they themselves added or
// removed in the same Tx.
func (tx *Tx) UpdateState(s *State) error {
	key := s.Key()
	cur, ok := tx.work.states[key]
	if !ok {
		return tx.fail(TransactionError(ErrUnknownHandle, "handle", s.Descriptor, "instance", s.Instance))
	}
	if cur.Kind != s.Kind {
		return tx.fail(TransactionError(ErrTypeMismatch, "handle", s.Descriptor))
	}
	if !tx.touchedDescriptors[s.Descriptor] && !kindAllowsState(tx.kind, s.Kind) {
		return tx.fail(TransactionError(ErrWrongKind, "kind", tx.kind, "op", "UpdateState", "handle", s.Descriptor))
	}
	if cur.Kind.IsContext() {
		inst := Handle(s.Instance)
		if cur.Context != nil && s.Context != nil && cur.Context.ContextAssociation != s.Context.ContextAssociation {
			if tx.touchedContextInstance[inst] {
				return tx.fail(TransactionError(ErrInvariantViolation,
					"reason", "one association change per context instance per transaction", "instance", s.Instance))
			}
			tx.touchedContextInstance[inst] = true
		}
	}
	cp := s.Clone()
	tx.work.states[key] = cp
	tx.touchedStates[key] = true
	return nil
}

// RemoveState removes one multi-state instance (context states only; every
// other entity's state is removed implicitly via RemoveDescriptor).
func (tx *Tx) RemoveState(key StateKey) error {
	cur, ok := tx.work.states[key]
	if !ok {
		return tx.fail(TransactionError(ErrUnknownHandle, "handle", key.Descriptor, "instance", key.Instance))
	}
	if !cur.Kind.IsMultiState() {
		return tx.fail(TransactionError(ErrInvariantViolation,
			"reason", "only multi-state entities may be removed independently of their descriptor",
			"handle", key.Descriptor))
	}
	if !tx.touchedDescriptors[key.Descriptor] && !kindAllowsState(tx.kind, cur.Kind) {
		return tx.fail(TransactionError(ErrWrongKind, "kind", tx.kind, "op", "RemoveState", "handle", key.Descriptor))
	}
	delete(tx.work.states, key)
	tx.touchedStates[key] = true
	return nil
}

// Commit validates and, if no rule was violated over the life of the Tx,
// publishes the new snapshot and reports it. Version assignment is exactly
// spec.md §4.E steps 1-3: the MDIB version advances by one, every touched
// descriptor/state's own version advances by one, everything else is
// unchanged.
func (tx *Tx) Commit() (*TransactionReport, error) {
	if tx.finished {
		return nil, TransactionError(ErrInvariantViolation, "reason", "transaction already finished")
	}
	tx.finished = true
	defer tx.store.release()

	if tx.err != nil {
		tx.store.countAbort(tx.kind, "rejected")
		return nil, tx.err
	}

	newVersion := tx.base.mdibVersion + 1
	tx.work.mdibVersion = newVersion

	changes := make([]EntityChange, 0, len(tx.touchedDescriptors)+len(tx.touchedStates))

	for h := range tx.touchedDescriptors {
		before := tx.base.descriptors[h]
		after, stillPresent := tx.work.descriptors[h]
		change := EntityChange{DescriptorHandle: h, DescriptorBefore: before, Removed: !stillPresent}
		if stillPresent {
			// Descendants touched only by cascadeBump still share their
			// entry with the base snapshot; bump a copy, never the shared value.
			after = after.Clone()
			tx.work.descriptors[h] = after
			after.DescriptorVersion = bumpDescriptorVersion(before)
			change.DescriptorAfter = after
		}
		changes = append(changes, change)
	}
	for key := range tx.touchedStates {
		before := tx.base.states[key]
		after, stillPresent := tx.work.states[key]
		change := EntityChange{DescriptorHandle: key.Descriptor, Instance: key.Instance, StateBefore: before, Removed: !stillPresent}
		if stillPresent {
			after.StateVersion = bumpStateVersion(before)
			change.StateAfter = after
		}
		changes = append(changes, change)
	}

	report := &TransactionReport{
		Kind:        tx.kind,
		MdibVersion: newVersion,
		SequenceID:  tx.work.sequenceID,
		Changes:     changes,
	}
	tx.store.publish(tx.work, report)
	return report, nil
}

// Abort discards the transaction's working copy without publishing
// anything.
func (tx *Tx) Abort() {
	if tx.finished {
		return
	}
	tx.finished = true
	tx.store.countAbort(tx.kind, "aborted")
	tx.store.release()
}

func bumpDescriptorVersion(before *Descriptor) uint64 {
	if before == nil {
		return 0
	}
	return before.DescriptorVersion + 1
}

func bumpStateVersion(before *State) uint64 {
	if before == nil {
		return 0
	}
	return before.StateVersion + 1
}
