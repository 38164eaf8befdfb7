package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSelfDependency(t *testing.T) {
	assert.True(t, ValidateSelfDependency(1, NewSet()))
	assert.True(t, ValidateSelfDependency(1, nil))
	assert.True(t, ValidateSelfDependency(1, NewSet(2, 3)))
	assert.False(t, ValidateSelfDependency(1, NewSet(1)))
	assert.False(t, ValidateSelfDependency(4, NewSet(2, 4, 9)))
}

func TestValidateSelfDependency_PersistedSelfLoop(t *testing.T) {
	// D(4) was stored depending on itself before validation existed. Any
	// proposed set that still includes 4 is rejected.
	snapshot := append(chain(), FromRaw(4, `[4]`))

	err := ValidateEdit(snapshot, 4, NewSet(1, 4))
	var self *SelfDependencyError
	require.ErrorAs(t, err, &self)
	assert.Equal(t, MilestoneID(4), self.ID)

	assert.NoError(t, ValidateEdit(snapshot, 4, NewSet(1)))
}

func TestValidateExistence(t *testing.T) {
	valid := NewSet(1, 2, 3)

	tests := []struct {
		name    string
		deps    Set
		valid   bool
		invalid []MilestoneID
	}{
		{"empty", NewSet(), true, []MilestoneID{}},
		{"all known", NewSet(1, 3), true, []MilestoneID{}},
		{"unknown", NewSet(99), false, []MilestoneID{99}},
		{"mixed", NewSet(50, 2, 7), false, []MilestoneID{7, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateExistence(tt.deps, valid)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.invalid, res.InvalidIDs)
		})
	}
}

func TestValidateEdit(t *testing.T) {
	tests := []struct {
		name     string
		edited   MilestoneID
		proposed Set
		check    func(t *testing.T, err error)
	}{
		{
			name:     "legal edit",
			edited:   3,
			proposed: NewSet(1, 2),
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:     "self dependency checked first",
			edited:   1,
			proposed: NewSet(1, 99, 3),
			check: func(t *testing.T, err error) {
				var self *SelfDependencyError
				assert.ErrorAs(t, err, &self)
			},
		},
		{
			name:     "unknown reference",
			edited:   2,
			proposed: NewSet(1, 99),
			check: func(t *testing.T, err error) {
				var unknown *UnknownReferenceError
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, []MilestoneID{99}, unknown.IDs)
				assert.Contains(t, err.Error(), "99")
			},
		},
		{
			name:     "circular dependency",
			edited:   1,
			proposed: NewSet(3),
			check: func(t *testing.T, err error) {
				var cycle *CircularDependencyError
				require.ErrorAs(t, err, &cycle)
				assert.Equal(t, []MilestoneID{1, 3, 2, 1}, cycle.Path)
				assert.Contains(t, err.Error(), "circular dependency")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEdit(chain(), tt.edited, tt.proposed)
			tt.check(t, err)
			assert.Equal(t, err != nil, IsValidationError(err))
		})
	}
}

func TestIsValidationError(t *testing.T) {
	assert.False(t, IsValidationError(nil))
	assert.False(t, IsValidationError(&CorruptedGraphError{Placed: 1, Total: 2}))
	assert.False(t, IsValidationError(&MalformedEncodingError{Raw: "x", Reason: "y"}))
	assert.True(t, IsValidationError(&SelfDependencyError{ID: 1}))
}
