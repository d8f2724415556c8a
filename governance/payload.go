package governance

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// Method selectors the engine answers on its own address.
var (
	selEmergencyEndVotes = crypto.Keccak256([]byte("emergencyEndVotes(uint256)"))[:4]
	selFinishVotes       = crypto.Keccak256([]byte("finishVotes(uint256)"))[:4]
)

const idCallLen = 4 + 32

// EmergencyEndPayload builds calldata for the escape hatch: the 4-byte
// keccak selector of emergencyEndVotes(uint256) followed by the ballot id
// as a big-endian uint256 word. A chairman wires it into a proposal whose
// target is the engine itself.
func EmergencyEndPayload(id uint64) []byte {
	return encodeIDCall(selEmergencyEndVotes, id)
}

// FinishVotesPayload builds calldata for a self-targeted finalization call.
func FinishVotesPayload(id uint64) []byte {
	return encodeIDCall(selFinishVotes, id)
}

func encodeIDCall(selector []byte, id uint64) []byte {
	buf := make([]byte, idCallLen)
	copy(buf, selector)
	binary.BigEndian.PutUint64(buf[idCallLen-8:], id)
	return buf
}

func decodeIDCall(payload []byte) (uint64, error) {
	if len(payload) < idCallLen {
		return 0, ErrShortCalldata
	}
	word := new(big.Int).SetBytes(payload[4 : 4+32])
	if !word.IsUint64() {
		// sequential ids never leave uint64 range, so an oversized word
		// cannot name a real ballot
		return 0, ErrProposalNotFound
	}
	return word.Uint64(), nil
}

func selectorOf(payload []byte) []byte {
	if len(payload) < 4 {
		return nil
	}
	return payload[:4]
}

func selectorIs(payload, selector []byte) bool {
	return bytes.Equal(selectorOf(payload), selector)
}
