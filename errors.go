/*
Copyright 2026 Vimeo Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package kcache

import "github.com/cockroachdb/errors"

// Errors returned by the constructors and by Load. Test for them with
// errors.Is; returned errors carry the offending value as context.
var (
	ErrInvalidThreshold       = errors.New("kcache: invalid promotion threshold")
	ErrInvalidHistoryCapacity = errors.New("kcache: invalid history capacity")
	ErrInvalidShardCount      = errors.New("kcache: invalid shard count")
	ErrNoKeyHasher            = errors.New("kcache: no key hasher provided")
	ErrNoLoader               = errors.New("kcache: no loader provided")
)
