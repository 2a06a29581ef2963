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

package discovery

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// dedupKey is the pair a message is deduplicated on (spec.md §4.D: "a
// duplicate-suppression window ... discards messages whose (AppSequence,
// MessageID) pair has been seen").
type dedupKey string

func makeDedupKey(seq AppSequence, messageID string) dedupKey {
	return dedupKey(fmt.Sprintf("%d/%d/%s", seq.InstanceID, seq.MessageNumber, messageID))
}

// dedupWindow suppresses re-delivery of messages already seen within
// Window. It is backed by an LRU so a misbehaving peer spamming distinct
// keys cannot grow it unboundedly; capacity is generous relative to
// plausible burst sizes within one window.
type dedupWindow struct {
	mu     sync.Mutex
	window time.Duration
	cache  *lru.Cache[dedupKey, time.Time]
}

func newDedupWindow(window time.Duration) *dedupWindow {
	c, _ := lru.New[dedupKey, time.Time](4096)
	return &dedupWindow{window: window, cache: c}
}

// seen reports whether key was already recorded within the window, and
// records it if not (or if its prior recording has aged out).
func (d *dedupWindow) seen(seq AppSequence, messageID string) bool {
	key := makeDedupKey(seq, messageID)
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.cache.Get(key); ok && now.Sub(last) < d.window {
		return true
	}
	d.cache.Add(key, now)
	return false
}
