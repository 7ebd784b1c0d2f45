package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"carrier-matching/internal/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMatcher struct {
	loadID int64
	opts   matching.Options
	err    error
}

func (r *recordingMatcher) GetMatchesForLoad(_ context.Context, loadID int64, opts matching.Options) (*matching.MatchResultSet, error) {
	r.loadID = loadID
	r.opts = opts
	if r.err != nil {
		return nil, r.err
	}
	return &matching.MatchResultSet{
		LoadID:          loadID,
		Matches:         []matching.MatchResult{{CarrierID: 7, CarrierName: "Lone Star", TotalScore: 74}},
		TotalCandidates: 1,
	}, nil
}

func runCommand(t *testing.T, m *recordingMatcher, args ...string) (string, error) {
	t.Helper()
	closed := false
	cmd := newRootCommand(func(string) (Matcher, func(), error) {
		return m, func() { closed = true }, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		assert.True(t, closed)
	}
	return out.String(), err
}

func TestMatchLoad_DefaultsLeaveOptionsUnset(t *testing.T) {
	m := &recordingMatcher{}
	out, err := runCommand(t, m, "42")
	require.NoError(t, err)

	assert.Equal(t, int64(42), m.loadID)
	assert.Nil(t, m.opts.MaxResults)
	assert.Nil(t, m.opts.VentureID)
	assert.Nil(t, m.opts.MinOnTimePercentage)
	assert.Nil(t, m.opts.MaxDistance)
	assert.Nil(t, m.opts.IncludeFmcsaHealth)
	assert.False(t, m.opts.RequireEquipmentMatch)

	var set matching.MatchResultSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	assert.Equal(t, int64(42), set.LoadID)
	require.Len(t, set.Matches, 1)
	assert.Equal(t, int64(7), set.Matches[0].CarrierID)
}

func TestMatchLoad_FlagsMapToOptions(t *testing.T) {
	m := &recordingMatcher{}
	_, err := runCommand(t, m, "42",
		"--max-results", "0",
		"--venture-id", "11",
		"--min-on-time", "85.5",
		"--max-distance", "250",
		"--require-equipment",
		"--only-authorized",
		"--no-fmcsa-health",
	)
	require.NoError(t, err)

	require.NotNil(t, m.opts.MaxResults)
	assert.Equal(t, 0, *m.opts.MaxResults)
	require.NotNil(t, m.opts.VentureID)
	assert.Equal(t, int64(11), *m.opts.VentureID)
	require.NotNil(t, m.opts.MinOnTimePercentage)
	assert.Equal(t, 85.5, *m.opts.MinOnTimePercentage)
	require.NotNil(t, m.opts.MaxDistance)
	assert.Equal(t, 250.0, *m.opts.MaxDistance)
	require.NotNil(t, m.opts.IncludeFmcsaHealth)
	assert.False(t, *m.opts.IncludeFmcsaHealth)
	assert.True(t, m.opts.RequireEquipmentMatch)
	assert.True(t, m.opts.OnlyAuthorizedCarriers)
}

func TestMatchLoad_Errors(t *testing.T) {
	t.Run("bad load id", func(t *testing.T) {
		_, err := runCommand(t, &recordingMatcher{}, "abc")
		assert.ErrorContains(t, err, `invalid load id "abc"`)
	})

	t.Run("missing load id", func(t *testing.T) {
		_, err := runCommand(t, &recordingMatcher{})
		assert.Error(t, err)
	})

	t.Run("negative max distance", func(t *testing.T) {
		m := &recordingMatcher{}
		_, err := runCommand(t, m, "9", "--max-distance=-5")
		assert.ErrorContains(t, err, "--max-distance must not be negative")
		assert.Zero(t, m.loadID, "engine must not run")
	})

	t.Run("engine failure", func(t *testing.T) {
		_, err := runCommand(t, &recordingMatcher{err: matching.ErrLoadNotFound}, "9")
		assert.True(t, errors.Is(err, matching.ErrLoadNotFound))
	})
}
