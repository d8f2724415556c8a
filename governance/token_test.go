package governance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenTransfers(t *testing.T) {
	token := NewMemoryToken()
	token.Mint(alice, 100)

	// spending your own account needs no allowance
	require.NoError(t, token.TransferFrom(alice, alice, bob, 40))
	assert.Equal(t, uint64(60), token.BalanceOf(alice))
	assert.Equal(t, uint64(40), token.BalanceOf(bob))

	err := token.TransferFrom(bob, alice, bob, 10)
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	token.Approve(alice, bob, 50)
	require.NoError(t, token.TransferFrom(bob, alice, bob, 10))
	assert.Equal(t, uint64(40), token.Allowance(alice, bob))

	err = token.TransferFrom(bob, alice, bob, 200)
	assert.ErrorIs(t, err, ErrInsufficientTokenBalance)

	// balance covers it, the remaining allowance does not
	err = token.TransferFrom(bob, alice, bob, 50)
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	assert.Equal(t, uint64(100), token.BalanceOf(alice)+token.BalanceOf(bob))
}
