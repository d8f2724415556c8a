package governance

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractRegistryDispatch(t *testing.T) {
	reg := NewContractRegistry()

	_, err := reg.Call(alice, bob, []byte{0x01})
	assert.ErrorIs(t, err, ErrUnknownContract)

	reg.Register(bob, func(env *CallEnv, payload []byte) ([]byte, error) {
		assert.Equal(t, alice, env.Caller)
		assert.Equal(t, bob, env.Self)
		return append([]byte{0xff}, payload...), nil
	})
	out, err := reg.Call(alice, bob, []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x01}, out)
}

// Nested calls carry the forwarding contract as sender, the way message
// senders chain on chain.
func TestCallEnvSenderChain(t *testing.T) {
	reg := NewContractRegistry()
	final := common.HexToAddress("0x00000000000000000000000000000000000000f1")

	var seen []common.Address
	reg.Register(final, func(env *CallEnv, payload []byte) ([]byte, error) {
		seen = append(seen, env.Caller)
		return nil, nil
	})
	reg.Register(bob, func(env *CallEnv, payload []byte) ([]byte, error) {
		seen = append(seen, env.Caller)
		return env.Call(final, payload)
	})

	_, err := reg.Call(alice, bob, nil)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{alice, bob}, seen)
}
