package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/wordrace/network"
)

func TestParseCommand(t *testing.T) {
	msgID, payload, err := parseCommand("create 3 20 Country,Animal,Big city")
	require.NoError(t, err)
	assert.Equal(t, uint16(network.MsgTypeCreateRoom), msgID)
	assert.Equal(t, map[string]any{
		"rounds":     3,
		"timeLimit":  20,
		"categories": []string{"Country", "Animal", "Big city"},
	}, payload)

	msgID, payload, err = parseCommand("answer Country New Zealand")
	require.NoError(t, err)
	assert.Equal(t, uint16(network.MsgTypeSubmitAnswer), msgID)
	assert.Equal(t, map[string]string{"category": "Country", "answer": "New Zealand"}, payload)

	_, payload, err = parseCommand("review p2 Animal true -")
	require.NoError(t, err)
	review := payload.(map[string]any)
	assert.Equal(t, true, *review["isValid"].(*bool))
	assert.Nil(t, review["isUnique"])
}

func TestParseCommand_Errors(t *testing.T) {
	for _, line := range []string{"", "fly", "join", "create many", "review p2 Animal maybe true"} {
		_, _, err := parseCommand(line)
		assert.Error(t, err, line)
	}
}
