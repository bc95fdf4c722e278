package p2p

import (
	"errors"
	"fmt"
	"io"
	"log"
	"offline-reconciler-go/blocks"
)

type MessageKind byte

const (
	PROPOSAL_MSG MessageKind = iota + 1
	SYNC_MSG
)

const PROTOCOL_VERSION byte = 1

// one kind byte plus the json body
const MAX_FRAME_SIZE = 4 << 20

var (
	ErrEmptyMessage    = errors.New("empty message")
	ErrFrameTooLarge   = errors.New("frame too large")
	ErrVersionMismatch = errors.New("protocol version mismatch")
)

// ReadFrame reads one whole frame, refusing anything above MAX_FRAME_SIZE.
func ReadFrame(r io.Reader) ([]byte, error) {
	frame, err := io.ReadAll(io.LimitReader(r, MAX_FRAME_SIZE+1))
	if err != nil {
		return nil, err
	}
	if len(frame) > MAX_FRAME_SIZE {
		return nil, fmt.Errorf("%w: over %d bytes", ErrFrameTooLarge, MAX_FRAME_SIZE)
	}
	return frame, nil
}

func CheckVersion(version byte) error {
	if version != PROTOCOL_VERSION {
		return fmt.Errorf(
			"%w: got %d, speak %d", ErrVersionMismatch, version, PROTOCOL_VERSION,
		)
	}
	return nil
}

func (mk MessageKind) MakePayload(data []byte) []byte {
	bs := make([]byte, 0, len(data)+1)
	bs = append(bs, byte(mk))
	bs = append(bs, data...)
	return bs
}

// SplitPayload separates the kind byte from the json body.
func SplitPayload(payload []byte) (MessageKind, []byte, error) {
	if len(payload) == 0 {
		return 0, nil, ErrEmptyMessage
	}
	return MessageKind(payload[0]), payload[1:], nil
}

func (mk MessageKind) IsKnown() bool {
	return mk >= PROPOSAL_MSG && mk <= SYNC_MSG
}

func (mk MessageKind) ToString() string {
	switch mk {
	case PROPOSAL_MSG:
		return "proposal message"
	case SYNC_MSG:
		return "sync message"
	default:
		log.Panicf("unknown value %d", mk)
	}
	return ""
}

// ProposalMsg carries one sealed block recorded while offline.
type ProposalMsg struct {
	From    NodeId
	Version byte
	Block   blocks.Block
}

// SyncMsg asks the reconciler to run a sync pass now.
type SyncMsg struct {
	From    NodeId
	Version byte
}
