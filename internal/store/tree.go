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
	"fmt"
	"sort"
	"strings"
)

// childRef is a resolved (offset + listing data) entry of a parent's active
// spec chain, used by the tree walker which needs the offset for its
// ancestor-cycle guard.
type childRef struct {
	Off  CRef
	Name string
	Type Type
	Qty  int
}

func (e *Engine) activeChildren(parentOff CRef) ([]childRef, error) {
	parentRec, err := e.readComponent(parentOff)
	if err != nil {
		return nil, err
	}

	var out []childRef
	for cur := parentRec.FirstSpec; cur != NoSRef; {
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
			out = append(out, childRef{Off: s.CompOff, Name: child.Name, Type: child.Type, Qty: int(s.Qty)})
		}
		cur = s.Next
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// BuildTree renders the transitive specification rooted at rootName as
// text. root must be an active, non-Detail component.
func (e *Engine) BuildTree(ctx context.Context, rootName string) (string, error) {
	const op = "BuildTree"
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureOpen(op); err != nil {
		return "", err
	}
	root, ok, err := e.findActive(rootName)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", newErr(KindNotFound, op, "component not found")
	}
	if root.Rec.Type == Detail {
		return "", newErr(KindTypeRule, op, "a Detail has no specification tree")
	}

	var sb strings.Builder
	sb.WriteString(root.Rec.Name)
	sb.WriteByte('\n')

	ancestors := map[CRef]bool{root.Off: true}
	if err := e.renderChildren(ctx, &sb, root.Off, "", ancestors); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// renderChildren writes one line per active child of parentOff, recursing
// into non-Detail children. ancestors guards against unbounded recursion on
// a corrupt (cyclic) on-disk graph; spec.md §4.4.1 is what prevents cycles
// from being created in the first place, so this is a defensive backstop.
func (e *Engine) renderChildren(ctx context.Context, sb *strings.Builder, parentOff CRef, prefix string, ancestors map[CRef]bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	children, err := e.activeChildren(parentOff)
	if err != nil {
		return err
	}

	for i, c := range children {
		last := i == len(children)-1
		branch, cont := "├─ ", "│  "
		if last {
			branch, cont = "└─ ", "   "
		}

		line := prefix + branch + c.Name
		if c.Qty != 1 {
			line += fmt.Sprintf(" x%d", c.Qty)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')

		if c.Type == Detail {
			continue
		}
		if ancestors[c.Off] {
			sb.WriteString(prefix + cont + "└─ [cycle detected]")
			sb.WriteByte('\n')
			continue
		}

		ancestors[c.Off] = true
		if err := e.renderChildren(ctx, sb, c.Off, prefix+cont, ancestors); err != nil {
			delete(ancestors, c.Off)
			return err
		}
		delete(ancestors, c.Off)
	}
	return nil
}
