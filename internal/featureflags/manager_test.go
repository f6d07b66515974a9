package featureflags

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, "alice@example.com"), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, "alice@example.com"), name)
	}
}

func TestEnabled_Percentage(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,junk=abc%")

	assert.True(t, m.Enabled("always", ""))
	assert.False(t, m.Enabled("never", "alice@example.com"))
	assert.False(t, m.Enabled("junk", "alice@example.com"))
	assert.False(t, m.Enabled("canary", ""), "rollout needs a subject")

	first := m.Enabled("canary", "alice@example.com")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", "ALICE@example.com "))
	}
}

func TestEnabled_RolloutIsRoughlyProportional(t *testing.T) {
	m := NewManager("canary=30%")

	on := 0
	for i := 0; i < 1000; i++ {
		if m.Enabled("canary", "user-"+strconv.Itoa(i)+"@example.com") {
			on++
		}
	}
	assert.InDelta(t, 300, on, 100)
}

func TestNewManager_Parsing(t *testing.T) {
	m := NewManager(" bad ,Public_Signup = ON, y = 20% ,=x,z=")

	assert.Equal(t, []string{"public_signup", "y"}, m.Names())
	assert.True(t, m.Enabled(PublicSignup, ""))
	assert.Equal(t, map[string]bool{"public_signup": true, "y": false}, m.Snapshot(""))
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled(PublicSignup, "x"))
	assert.Nil(t, m.Names())
	assert.Empty(t, m.Snapshot("x"))
}
