package action

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

func TestNewFunctionCall(t *testing.T) {
	t.Parallel()

	t.Run("defaults gas and deposit", func(t *testing.T) {
		t.Parallel()
		act, err := NewFunctionCall("increment", map[string]int{"by": 2}, "", "", "")
		require.NoError(t, err)

		fc, ok := act.(FunctionCall)
		require.True(t, ok)
		assert.Equal(t, "increment", fc.MethodName)
		assert.Equal(t, DefaultGas, fc.Gas)
		assert.Equal(t, "0", fc.Deposit)
		assert.JSONEq(t, `{"by": 2}`, string(fc.Args))
	})

	t.Run("base64 args win over structured args", func(t *testing.T) {
		t.Parallel()
		act, err := NewFunctionCall("m", map[string]int{"ignored": 1}, "eyJhIjoxfQ==", "", "")
		require.NoError(t, err)

		fc := act.(FunctionCall)
		assert.Equal(t, `{"a":1}`, string(fc.Args))
	})

	t.Run("nil args produce no payload", func(t *testing.T) {
		t.Parallel()
		act, err := NewFunctionCall("get_count", nil, "", "", "")
		require.NoError(t, err)
		assert.Empty(t, act.(FunctionCall).Args)
	})

	t.Run("rejects empty method name", func(t *testing.T) {
		t.Parallel()
		_, err := NewFunctionCall("", nil, "", "", "")
		assert.ErrorIs(t, err, nlerr.ErrInvalidAction)
	})

	t.Run("rejects bad base64", func(t *testing.T) {
		t.Parallel()
		_, err := NewFunctionCall("m", nil, "not-base64!!", "", "")
		assert.ErrorIs(t, err, nlerr.ErrInvalidAction)
	})

	t.Run("rejects non-integer gas", func(t *testing.T) {
		t.Parallel()
		_, err := NewFunctionCall("m", nil, "", "1.5", "")
		assert.ErrorIs(t, err, nlerr.ErrInvalidAction)
	})

	t.Run("rejects negative deposit", func(t *testing.T) {
		t.Parallel()
		_, err := NewFunctionCall("m", nil, "", "", "-1")
		assert.ErrorIs(t, err, nlerr.ErrInvalidAction)
	})

	t.Run("accepts deposits beyond uint64", func(t *testing.T) {
		t.Parallel()
		_, err := NewFunctionCall("m", nil, "", "", "340282366920938463463374607431768211455")
		assert.NoError(t, err)
	})
}

func TestFactories(t *testing.T) {
	t.Parallel()

	t.Run("transfer", func(t *testing.T) {
		t.Parallel()
		act, err := NewTransfer("1500000000000000000000000")
		require.NoError(t, err)
		assert.Equal(t, KindTransfer, act.Kind())

		_, err = NewTransfer("abc")
		assert.ErrorIs(t, err, nlerr.ErrInvalidAction)
	})

	t.Run("stake and unstake", func(t *testing.T) {
		t.Parallel()
		act, err := NewStake("100", "ed25519:abc")
		require.NoError(t, err)
		assert.Equal(t, "100", act.(Stake).Stake)

		act, err = NewUnstake("ed25519:abc")
		require.NoError(t, err)
		assert.Equal(t, "0", act.(Stake).Stake)

		_, err = NewStake("100", "")
		assert.ErrorIs(t, err, nlerr.ErrInvalidAction)
	})

	t.Run("full access key has nil scope", func(t *testing.T) {
		t.Parallel()
		act, err := NewAddFullAccessKey("ed25519:abc")
		require.NoError(t, err)
		assert.Nil(t, act.(AddKey).Permission.Scope)
	})

	t.Run("limited access key carries scope", func(t *testing.T) {
		t.Parallel()
		act, err := NewAddLimitedAccessKey("ed25519:abc", "250000000000000000000000", "counter.near", []string{"increment"})
		require.NoError(t, err)

		scope := act.(AddKey).Permission.Scope
		require.NotNil(t, scope)
		assert.Equal(t, "counter.near", scope.ReceiverID)
		assert.Equal(t, []string{"increment"}, scope.MethodNames)

		_, err = NewAddLimitedAccessKey("ed25519:abc", "not-a-number", "counter.near", nil)
		assert.ErrorIs(t, err, nlerr.ErrInvalidAction)
	})

	t.Run("delete variants", func(t *testing.T) {
		t.Parallel()
		_, err := NewDeleteKey("")
		assert.ErrorIs(t, err, nlerr.ErrInvalidAction)

		act, err := NewDeleteAccount("bob.near")
		require.NoError(t, err)
		assert.Equal(t, "bob.near", act.(DeleteAccount).BeneficiaryID)
	})

	t.Run("deploy contract rejects empty code", func(t *testing.T) {
		t.Parallel()
		_, err := NewDeployContract(nil)
		assert.ErrorIs(t, err, nlerr.ErrInvalidAction)
	})

	t.Run("ft transfer attaches one yocto", func(t *testing.T) {
		t.Parallel()
		act, err := NewTransferFT("bob.near", "1000000", "rent")
		require.NoError(t, err)

		fc := act.(FunctionCall)
		assert.Equal(t, "ft_transfer", fc.MethodName)
		assert.Equal(t, "1", fc.Deposit)
		assert.JSONEq(t, `{"receiver_id":"bob.near","amount":"1000000","memo":"rent"}`, string(fc.Args))
	})
}

func TestKindString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want string
	}{
		{KindCreateAccount, "CreateAccount"},
		{KindDeployContract, "DeployContract"},
		{KindFunctionCall, "FunctionCall"},
		{KindTransfer, "Transfer"},
		{KindStake, "Stake"},
		{KindAddKey, "AddKey"},
		{KindDeleteKey, "DeleteKey"},
		{KindDeleteAccount, "DeleteAccount"},
		{Kind(99), "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestList_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	fc, err := NewFunctionCall("increment", map[string]int{"by": 2}, "", "", "")
	require.NoError(t, err)
	tr, err := NewTransfer("42")
	require.NoError(t, err)
	ak, err := NewAddLimitedAccessKey("ed25519:abc", "", "counter.near", []string{"increment"})
	require.NoError(t, err)

	original := List{fc, tr, ak, NewCreateAccount()}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded List
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 4)

	assert.Equal(t, original[0], decoded[0])
	assert.Equal(t, original[1], decoded[1])
	assert.Equal(t, original[2].(AddKey).PublicKey, decoded[2].(AddKey).PublicKey)
	assert.Equal(t, KindCreateAccount, decoded[3].Kind())
}

func TestList_TaggedShape(t *testing.T) {
	t.Parallel()

	tr, err := NewTransfer("7")
	require.NoError(t, err)

	data, err := json.Marshal(List{tr})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"Transfer","params":{"deposit":"7"}}]`, string(data))
}

func TestList_UnknownTypeRejected(t *testing.T) {
	t.Parallel()

	var l List
	err := json.Unmarshal([]byte(`[{"type":"Mint","params":{}}]`), &l)
	assert.Error(t, err)
}
