package taskcfg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/taskrun/internal/taskcfg"
)

const (
	testGreetingKeyConstant       = "greeting"
	testGreetingValueConstant     = "hello"
	testOverrideValueConstant     = "hola"
	testNestedSettingsKeyConstant = "settings"
)

func TestContextCloneIsValueIndependent(testInstance *testing.T) {
	baseContext := taskcfg.NewContextFromValues(map[string]any{
		testGreetingKeyConstant: testGreetingValueConstant,
		testNestedSettingsKeyConstant: map[string]any{
			"verbose": true,
			"tags":    []any{"fast", "local"},
		},
	})

	clonedContext := baseContext.Clone()
	clonedContext.Update(map[string]any{testGreetingKeyConstant: testOverrideValueConstant})

	clonedNested, clonedNestedExists := clonedContext.Get(testNestedSettingsKeyConstant)
	require.True(testInstance, clonedNestedExists)
	clonedNested.(map[string]any)["verbose"] = false

	originalGreeting, originalGreetingExists := baseContext.Get(testGreetingKeyConstant)
	require.True(testInstance, originalGreetingExists)
	require.Equal(testInstance, testGreetingValueConstant, originalGreeting)

	originalNested, originalNestedExists := baseContext.Get(testNestedSettingsKeyConstant)
	require.True(testInstance, originalNestedExists)
	require.Equal(testInstance, true, originalNested.(map[string]any)["verbose"])
}

func TestContextUpdateOverridesExistingKeys(testInstance *testing.T) {
	testCases := []struct {
		name          string
		initialValues map[string]any
		updateValues  map[string]any
		expectedKey   string
		expectedValue any
	}{
		{
			name:          "override_existing_key",
			initialValues: map[string]any{testGreetingKeyConstant: testGreetingValueConstant},
			updateValues:  map[string]any{testGreetingKeyConstant: testOverrideValueConstant},
			expectedKey:   testGreetingKeyConstant,
			expectedValue: testOverrideValueConstant,
		},
		{
			name:          "add_new_key",
			initialValues: map[string]any{testGreetingKeyConstant: testGreetingValueConstant},
			updateValues:  map[string]any{"farewell": "bye"},
			expectedKey:   "farewell",
			expectedValue: "bye",
		},
		{
			name:          "empty_update_preserves_values",
			initialValues: map[string]any{testGreetingKeyConstant: testGreetingValueConstant},
			updateValues:  map[string]any{},
			expectedKey:   testGreetingKeyConstant,
			expectedValue: testGreetingValueConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			configurationContext := taskcfg.NewContextFromValues(testCase.initialValues)
			configurationContext.Update(testCase.updateValues)

			storedValue, exists := configurationContext.Get(testCase.expectedKey)
			require.True(subtestInstance, exists)
			require.Equal(subtestInstance, testCase.expectedValue, storedValue)
		})
	}
}

func TestContextSnapshotCopiesValues(testInstance *testing.T) {
	configurationContext := taskcfg.NewContextFromValues(map[string]any{testGreetingKeyConstant: testGreetingValueConstant})

	snapshot := configurationContext.Snapshot()
	snapshot[testGreetingKeyConstant] = testOverrideValueConstant

	storedValue, exists := configurationContext.Get(testGreetingKeyConstant)
	require.True(testInstance, exists)
	require.Equal(testInstance, testGreetingValueConstant, storedValue)
	require.Equal(testInstance, 1, configurationContext.Len())
}
