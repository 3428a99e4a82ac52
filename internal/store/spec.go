// Copyright 2026 The Partsdb Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"sort"
	"strings"

	"github.com/nyxlabs/partsdb/common"
)

// SpecLine is a listing-friendly view of one child entry in a parent's spec
// chain.
type SpecLine struct {
	Name string
	Type Type
	Qty  int
}

const maxQty = 32767

// AddSpec adds or merges a parent->child spec. Both components must be
// active, the parent must not be a Detail, and qty must be at least 1. If
// an active spec for (parent, child) already exists, qty is added to it
// instead of allocating a new record.
func (e *Engine) AddSpec(ctx context.Context, parentName, childName string, qty int) error {
	const op = "AddSpec"
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureOpen(op); err != nil {
		return err
	}
	if qty < 1 {
		return newErr(KindInvalidArgument, op, "qty must be at least 1")
	}

	parent, ok, err := e.findActive(parentName)
	if err != nil {
		return err
	}
	if !ok {
		return newErr(KindNotFound, op, "parent component not found")
	}
	if parent.Rec.Type == Detail {
		return newErr(KindTypeRule, op, "a Detail cannot have specs")
	}
	child, ok, err := e.findActive(childName)
	if err != nil {
		return err
	}
	if !ok {
		return newErr(KindNotFound, op, "child component not found")
	}

	if parent.Off == child.Off {
		return newErr(KindCycleDetected, op, "a component cannot specify itself")
	}
	cyclic, err := e.reachable(child.Off, parent.Off)
	if err != nil {
		return err
	}
	if cyclic {
		return newErr(KindCycleDetected, op, "spec would create a cycle")
	}

	// Walk the parent's chain: merge into an existing active spec for this
	// child, or append a new one at the tail.
	var lastOff SRef = NoSRef
	for cur := parent.Rec.FirstSpec; cur != NoSRef; {
		s, err := e.readSpec(cur)
		if err != nil {
			return err
		}
		if !s.Deleted && s.CompOff == child.Off {
			newQty := int(s.Qty) + qty
			if newQty > maxQty {
				return newErr(KindInvalidArgument, op, "qty exceeds maximum of 32767")
			}
			s.Qty = int16(newQty)
			if err := e.writeSpec(cur, s); err != nil {
				return err
			}
			e.log.InfoContext(ctx, "merged spec", "parent", parentName, "child", childName, "qty", newQty)
			return nil
		}
		lastOff = cur
		cur = s.Next
	}

	if qty > maxQty {
		return newErr(KindInvalidArgument, op, "qty exceeds maximum of 32767")
	}
	newOff, err := e.appendSpec(specRecord{Deleted: false, CompOff: child.Off, Qty: int16(qty), Next: NoSRef})
	if err != nil {
		return err
	}

	if lastOff == NoSRef {
		parent.Rec.FirstSpec = newOff
		if err := e.writeComponent(parent.Off, parent.Rec); err != nil {
			return err
		}
	} else {
		last, err := e.readSpec(lastOff)
		if err != nil {
			return err
		}
		last.Next = newOff
		if err := e.writeSpec(lastOff, last); err != nil {
			return err
		}
	}

	e.log.InfoContext(ctx, "added spec", "parent", parentName, "child", childName, "qty", qty)
	return nil
}

// reachable runs a DFS from start over active outgoing specs to active
// children, looking for target. It uses an explicit stack and a visited
// set so it terminates even on an already-corrupt graph.
func (e *Engine) reachable(start, target CRef) (bool, error) {
	stack := common.NewStack[CRef]()
	visited := make(map[CRef]bool)
	stack.Push(start)

	for !stack.IsEmpty() {
		cur := stack.Pop()
		if cur == target {
			return true, nil
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true

		rec, err := e.readComponent(cur)
		if err != nil {
			return false, err
		}
		if rec.Deleted {
			continue
		}
		for s := rec.FirstSpec; s != NoSRef; {
			sp, err := e.readSpec(s)
			if err != nil {
				return false, err
			}
			if !sp.Deleted {
				stack.Push(sp.CompOff)
			}
			s = sp.Next
		}
	}
	return false, nil
}

// DeleteSpec marks the first active spec on parent's chain pointing at
// child as deleted.
func (e *Engine) DeleteSpec(ctx context.Context, parentName, childName string) error {
	const op = "DeleteSpec"
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureOpen(op); err != nil {
		return err
	}
	parent, ok, err := e.findActive(parentName)
	if err != nil {
		return err
	}
	if !ok {
		return newErr(KindNotFound, op, "parent component not found")
	}
	if parent.Rec.Type == Detail {
		return newErr(KindTypeRule, op, "a Detail cannot have specs")
	}
	child, ok, err := e.findActive(childName)
	if err != nil {
		return err
	}
	if !ok {
		return newErr(KindNotFound, op, "child component not found")
	}

	for cur := parent.Rec.FirstSpec; cur != NoSRef; {
		s, err := e.readSpec(cur)
		if err != nil {
			return err
		}
		if !s.Deleted && s.CompOff == child.Off {
			s.Deleted = true
			if err := e.writeSpec(cur, s); err != nil {
				return err
			}
			e.log.InfoContext(ctx, "deleted spec", "parent", parentName, "child", childName)
			return nil
		}
		cur = s.Next
	}
	return newErr(KindNotFound, op, "spec not found")
}

// ListSpec walks parentName's chain, collecting active specs whose child is
// itself active, sorted by lowercase child name.
func (e *Engine) ListSpec(ctx context.Context, parentName string) ([]SpecLine, error) {
	const op = "ListSpec"
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureOpen(op); err != nil {
		return nil, err
	}
	parent, ok, err := e.findActive(parentName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newErr(KindNotFound, op, "component not found")
	}

	var out []SpecLine
	for cur := parent.Rec.FirstSpec; cur != NoSRef; {
		s, err := e.readSpec(cur)
		if err != nil {
			return nil, err
		}
		if s.Deleted {
			cur = s.Next
			continue
		}
		child, err := e.readComponent(s.CompOff)
		if err != nil {
			return nil, err
		}
		if !child.Deleted {
			out = append(out, SpecLine{Name: child.Name, Type: child.Type, Qty: int(s.Qty)})
		}
		cur = s.Next
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
