package maincmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCmdsDiscoversExportedPassMethods(t *testing.T) {
	cmds := buildCmds(&Cmd{})
	for _, name := range []string{"lb", "la", "ir", "l2", "l1", "all"} {
		assert.Contains(t, cmds, name, "expected a %q entry discovered by reflection", name)
	}
	assert.Len(t, cmds, 6, "buildCmds must not pick up SetArgs/SetFlags/Validate/Main, which don't match the command-function shape")
}

func TestValidateHelpAndVersionShortCircuit(t *testing.T) {
	c := &Cmd{Help: true}
	assert.NoError(t, c.Validate())

	c = &Cmd{Version: true}
	assert.NoError(t, c.Validate())
}

func TestValidateRequiresACommand(t *testing.T) {
	c := &Cmd{}
	c.SetArgs(nil)
	c.SetFlags(map[string]bool{})
	assert.Error(t, c.Validate())
}

func TestValidateRejectsUnknownCommand(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"bogus", "file.txt"})
	c.SetFlags(map[string]bool{})
	err := c.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "unknown command")
	}
}

func TestValidateRequiresExactlyOneSourceArg(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"lb", "a.lb", "b.lb"})
	c.SetFlags(map[string]bool{})
	err := c.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "exactly one SOURCE file")
	}
}

func TestValidateRestrictsSpillAndLivenessFlagsToL2(t *testing.T) {
	c := &Cmd{SpillOnly: true}
	c.SetArgs([]string{"la", "file.a"})
	c.SetFlags(map[string]bool{"s": true})
	err := c.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "-s and -l only apply to the l2 command")
	}

	c = &Cmd{SpillOnly: true}
	c.SetArgs([]string{"l2", "file.L2"})
	c.SetFlags(map[string]bool{"s": true})
	assert.NoError(t, c.Validate())
}

func TestValidateRestrictsInterferenceFlagToL2AndL1(t *testing.T) {
	c := &Cmd{InterferenceOnly: true}
	c.SetArgs([]string{"la", "file.a"})
	c.SetFlags(map[string]bool{"i": true})
	err := c.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "-i only applies to the l2 and l1 commands")
	}

	for _, cmd := range []string{"l2", "l1"} {
		c = &Cmd{InterferenceOnly: true}
		c.SetArgs([]string{cmd, "file"})
		c.SetFlags(map[string]bool{"i": true})
		assert.NoError(t, c.Validate())
	}
}

func TestValidateDefaultsGenCodeToOneWhenFlagNotPassed(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"l1", "file.L1"})
	c.SetFlags(map[string]bool{})
	require.NoError(t, c.Validate())
	assert.Equal(t, 1, c.GenCode)
}

func TestValidateHonoursExplicitGenCodeFlag(t *testing.T) {
	c := &Cmd{GenCode: 0}
	c.SetArgs([]string{"l1", "file.L1"})
	c.SetFlags(map[string]bool{"g": true})
	require.NoError(t, c.Validate())
	assert.Equal(t, 0, c.GenCode)
}
