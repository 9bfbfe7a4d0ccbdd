package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/pointbuy/internal/game/character"
	"github.com/cory-johannsen/pointbuy/internal/game/ruleset"
)

func TestManager_Open(t *testing.T) {
	m := NewManager(ruleset.Edition5, 0)
	sess, err := m.Open("127.0.0.1:5000")
	require.NoError(t, err)
	_, err = uuid.Parse(sess.ID)
	assert.NoError(t, err, "session IDs are UUIDs")
	assert.Equal(t, ruleset.Edition5, sess.Edition())
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, []string{sess.ID}, m.IDs())
}

func TestManager_OpenAtCapacity(t *testing.T) {
	m := NewManager(ruleset.Edition35, 1)
	_, err := m.Open("a")
	require.NoError(t, err)
	_, err = m.Open("b")
	assert.ErrorIs(t, err, ErrCapacity)
	assert.Equal(t, 1, m.Count())
}

func TestManager_Close(t *testing.T) {
	m := NewManager(ruleset.Edition35, 0)
	sess, err := m.Open("a")
	require.NoError(t, err)
	require.NoError(t, m.Close(sess.ID))
	assert.Equal(t, 0, m.Count())

	err = m.Close(sess.ID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestManager_IDsSorted(t *testing.T) {
	m := NewManager(ruleset.Edition35, 0)
	for i := 0; i < 5; i++ {
		_, err := m.Open(fmt.Sprintf("peer-%d", i))
		require.NoError(t, err)
	}
	ids := m.IDs()
	require.Len(t, ids, 5)
	assert.IsIncreasing(t, ids)
}

func TestManager_ConcurrentOpenClose(t *testing.T) {
	m := NewManager(ruleset.Edition5, 0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := m.Open(fmt.Sprintf("peer-%d", i))
			if err != nil {
				t.Errorf("open: %v", err)
				return
			}
			_ = sess.With(func(s *Sheet) error { return s.Adjust(character.Strength, 1) })
			if err := m.Close(sess.ID); err != nil {
				t.Errorf("close: %v", err)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, m.Count())
}

func TestSession_SwitchEditionKeepsSheets(t *testing.T) {
	m := NewManager(ruleset.Edition35, 0)
	sess, err := m.Open("a")
	require.NoError(t, err)

	require.NoError(t, sess.With(func(s *Sheet) error { return s.Adjust(character.Wisdom, 1) }))
	sess.SwitchEdition(ruleset.Edition5)
	assert.Equal(t, ruleset.Edition5, sess.Edition())
	_ = sess.With(func(s *Sheet) error {
		assert.Equal(t, character.Uniform(8), s.Scores)
		return nil
	})

	sess.SwitchEdition(ruleset.Edition35)
	_ = sess.With(func(s *Sheet) error {
		assert.Equal(t, 9, s.Scores.Get(character.Wisdom))
		return nil
	})
}

func TestSession_ResetEdition(t *testing.T) {
	m := NewManager(ruleset.Edition5, 0)
	sess, err := m.Open("a")
	require.NoError(t, err)
	require.NoError(t, sess.With(func(s *Sheet) error { return s.SetPool(40) }))
	sess.ResetEdition()
	_ = sess.With(func(s *Sheet) error {
		assert.Equal(t, 27, s.Pool)
		return nil
	})
}

// Property: Count equals opens minus closes.
func TestManager_CountTracksOpenClose(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := NewManager(ruleset.Edition5, 0)
		var open []string
		ops := rapid.IntRange(1, 40).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			if len(open) > 0 && rapid.Bool().Draw(rt, "close") {
				idx := rapid.IntRange(0, len(open)-1).Draw(rt, "idx")
				if err := m.Close(open[idx]); err != nil {
					rt.Fatal(err)
				}
				open = append(open[:idx], open[idx+1:]...)
				continue
			}
			sess, err := m.Open("peer")
			if err != nil {
				rt.Fatal(err)
			}
			open = append(open, sess.ID)
		}
		if m.Count() != len(open) {
			rt.Fatalf("Count() = %d, want %d", m.Count(), len(open))
		}
	})
}
