// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvents(t *testing.T) {
	assert.Len(t, eventNames, numEvents)
	assert.Len(t, Events(), numEvents)
	events := Events()
	assert.Equal(t, BeforeStart, events[BeforeStart])
	assert.Equal(t, AfterRedirect, events[AfterRedirect])
	assert.Equal(t, AfterChallenge, events[AfterChallenge])
	assert.Equal(t, AfterHeaders, events[AfterHeaders])
	assert.Equal(t, AfterData, events[AfterData])
	assert.Equal(t, AfterFinish, events[AfterFinish])
	assert.Equal(t, AfterFail, events[AfterFail])
}

func TestEvent_Name(t *testing.T) {
	assert.Equal(t, "BeforeStart", BeforeStart.Name())
	assert.Equal(t, "AfterRedirect", AfterRedirect.Name())
	assert.Equal(t, "AfterChallenge", AfterChallenge.Name())
	assert.Equal(t, "AfterHeaders", AfterHeaders.Name())
	assert.Equal(t, "AfterData", AfterData.Name())
	assert.Equal(t, "AfterFinish", AfterFinish.String())
	assert.Equal(t, "AfterFail", AfterFail.String())
}

func TestEvent_Terminal(t *testing.T) {
	for _, evt := range Events() {
		assert.Equal(t, evt == AfterFinish || evt == AfterFail, evt.Terminal(), evt.Name())
	}
}
