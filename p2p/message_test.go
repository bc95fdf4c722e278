package p2p

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadFraming(t *testing.T) {
	payload := SYNC_MSG.MakePayload([]byte(`{"From":{}}`))
	kind, body, err := SplitPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, SYNC_MSG, kind)
	assert.Equal(t, `{"From":{}}`, string(body))

	_, _, err = SplitPayload(nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestMessageKinds(t *testing.T) {
	assert.True(t, PROPOSAL_MSG.IsKnown())
	assert.True(t, SYNC_MSG.IsKnown())
	assert.False(t, MessageKind(0).IsKnown())
	assert.False(t, MessageKind(42).IsKnown())
	assert.Equal(t, "proposal message", PROPOSAL_MSG.ToString())
	assert.Panics(t, func() { MessageKind(42).ToString() })
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "localhost:3000", Address("3000"))
	assert.Equal(t, "10.0.0.1:4000", Address("10.0.0.1:4000"))
	assert.Equal(t, "localhost:3001", NewNodeId("3001", PROPOSER_NODE).Ip)
}

func TestReadFrame(t *testing.T) {
	frame, err := ReadFrame(bytes.NewReader(PROPOSAL_MSG.MakePayload([]byte("{}"))))
	require.NoError(t, err)
	assert.Len(t, frame, 3)

	exact := bytes.Repeat([]byte{1}, MAX_FRAME_SIZE)
	frame, err = ReadFrame(bytes.NewReader(exact))
	require.NoError(t, err)
	assert.Len(t, frame, MAX_FRAME_SIZE)

	_, err = ReadFrame(bytes.NewReader(append(exact, 1)))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion(PROTOCOL_VERSION))
	assert.ErrorIs(t, CheckVersion(PROTOCOL_VERSION+1), ErrVersionMismatch)
}

func TestNodeIdString(t *testing.T) {
	assert.Equal(t, "localhost:3000", NewNodeId("3000", RECONCILER_NODE).String())
	proposer := NodeId{Kind: PROPOSER_NODE, Account: "GABC"}
	assert.Equal(t, "account GABC", proposer.String())
}
