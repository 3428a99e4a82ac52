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

// Type tags a component as a Product, Assembly, or Detail. The on-disk
// encoding is the single ASCII letter in parentheses.
type Type byte

const (
	// Product (I) is a top-level sellable item.
	Product Type = 'I'
	// Assembly (U) is an intermediate component composed of other
	// components.
	Assembly Type = 'U'
	// Detail (D) is a leaf component; it can never have outgoing specs.
	Detail Type = 'D'
)

func (t Type) String() string {
	switch t {
	case Product:
		return "Product"
	case Assembly:
		return "Assembly"
	case Detail:
		return "Detail"
	default:
		return string(rune(t))
	}
}

// ParseType maps a type letter to a Type, defaulting to Product for any
// letter it doesn't recognize. The codec strips any "X:" prefix before
// calling it, so a field with an unrecognized letter decodes as a Product
// without that prefix; a field with no "X:" prefix at all is a Product with
// the literal name.
func ParseType(b byte) Type {
	switch Type(b) {
	case Product, Assembly, Detail:
		return Type(b)
	default:
		return Product
	}
}
