// Package wire maps transactions onto the chain's borsh wire schema. The
// binary encoding itself is delegated to the borsh serializer; this package
// only declares the schema and converts between the client's types and it.
package wire

import (
	"crypto/sha256"
	"math/big"
	"strconv"

	"github.com/btcsuite/btcutil/base58"
	"github.com/near/borsh-go"

	"github.com/mrz1836/nearlight/internal/action"
	"github.com/mrz1836/nearlight/internal/keys"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// Transaction is the unsigned wire transaction.
type Transaction struct {
	SignerID   string
	PublicKey  PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [32]uint8
	Actions    []Action
}

// SignedTransaction attaches a signature to a Transaction.
type SignedTransaction struct {
	Transaction Transaction
	Signature   Signature
}

// PublicKey is a key with its curve tag. Ed25519 is key type 0.
type PublicKey struct {
	KeyType uint8
	Data    [32]uint8
}

// Signature is a signature with its curve tag.
type Signature struct {
	KeyType uint8
	Data    [64]uint8
}

// Action is the wire-level action enum. The variant order is fixed by the
// protocol and must not be rearranged.
type Action struct {
	Enum           borsh.Enum `borsh_enum:"true"`
	CreateAccount  CreateAccount
	DeployContract DeployContract
	FunctionCall   FunctionCall
	Transfer       Transfer
	Stake          Stake
	AddKey         AddKey
	DeleteKey      DeleteKey
	DeleteAccount  DeleteAccount
}

// CreateAccount is the empty create-account variant.
type CreateAccount struct{}

// DeployContract carries the contract code.
type DeployContract struct {
	Code []uint8
}

// FunctionCall carries a method invocation.
type FunctionCall struct {
	MethodName string
	Args       []uint8
	Gas        uint64
	Deposit    big.Int
}

// Transfer carries a balance transfer.
type Transfer struct {
	Deposit big.Int
}

// Stake carries a staking operation.
type Stake struct {
	Stake     big.Int
	PublicKey PublicKey
}

// AddKey attaches an access key.
type AddKey struct {
	PublicKey PublicKey
	AccessKey AccessKey
}

// DeleteKey removes an access key.
type DeleteKey struct {
	PublicKey PublicKey
}

// DeleteAccount deletes the signer account.
type DeleteAccount struct {
	BeneficiaryID string
}

// AccessKey is an on-chain access key record.
type AccessKey struct {
	Nonce      uint64
	Permission AccessKeyPermission
}

// AccessKeyPermission is the permission enum: FunctionCall scope or
// FullAccess, in that protocol order.
type AccessKeyPermission struct {
	Enum         borsh.Enum `borsh_enum:"true"`
	FunctionCall FunctionCallPermission
	FullAccess   FullAccessPermission
}

// FunctionCallPermission scopes a key to methods on one receiver.
type FunctionCallPermission struct {
	Allowance   *big.Int
	ReceiverID  string
	MethodNames []string
}

// FullAccessPermission is the empty full-access variant.
type FullAccessPermission struct{}

// Enum ordinals for Action.
const (
	enumCreateAccount borsh.Enum = iota
	enumDeployContract
	enumFunctionCall
	enumTransfer
	enumStake
	enumAddKey
	enumDeleteKey
	enumDeleteAccount
)

// Enum ordinals for AccessKeyPermission.
const (
	enumPermissionFunctionCall borsh.Enum = iota
	enumPermissionFullAccess
)

// NewTransaction assembles a wire transaction from client-level fields.
// blockHash is the base58 previous-block hash from the block cache.
func NewTransaction(signerID, publicKey string, nonce uint64, receiverID, blockHash string, actions []action.Action) (*Transaction, error) {
	pk, err := newPublicKey(publicKey)
	if err != nil {
		return nil, err
	}

	rawHash := base58.Decode(blockHash)
	if len(rawHash) != 32 {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidInput, map[string]string{
			"block_hash": blockHash,
		})
	}

	tx := &Transaction{
		SignerID:   signerID,
		PublicKey:  pk,
		Nonce:      nonce,
		ReceiverID: receiverID,
		Actions:    make([]Action, 0, len(actions)),
	}
	copy(tx.BlockHash[:], rawHash)

	for _, a := range actions {
		wa, err := newAction(a)
		if err != nil {
			return nil, err
		}
		tx.Actions = append(tx.Actions, wa)
	}

	return tx, nil
}

// Encode serializes the unsigned transaction.
func (t *Transaction) Encode() ([]byte, error) {
	data, err := borsh.Serialize(*t)
	if err != nil {
		return nil, nlerr.Wrap(err, "serializing transaction")
	}
	return data, nil
}

// Hash returns the sha256 digest of the serialized transaction. This is the
// payload the signer signs.
func (t *Transaction) Hash() ([]byte, error) {
	data, err := t.Encode()
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	return sum[:], nil
}

// Signed wraps the transaction with its ed25519 signature and serializes the
// result.
func (t *Transaction) Signed(sig []byte) ([]byte, error) {
	if len(sig) != 64 {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidInput, map[string]string{
			"reason": "signature must be 64 bytes",
		})
	}

	signed := SignedTransaction{
		Transaction: *t,
		Signature:   Signature{KeyType: 0},
	}
	copy(signed.Signature.Data[:], sig)

	data, err := borsh.Serialize(signed)
	if err != nil {
		return nil, nlerr.Wrap(err, "serializing signed transaction")
	}
	return data, nil
}

// newPublicKey converts an encoded "ed25519:" key into its wire form.
func newPublicKey(s string) (PublicKey, error) {
	raw, err := keys.DecodePublicKey(s)
	if err != nil {
		return PublicKey{}, err
	}
	pk := PublicKey{KeyType: 0}
	copy(pk.Data[:], raw)
	return pk, nil
}

// newAction converts a client action into its wire variant.
//
//nolint:gocyclo // One case per protocol variant
func newAction(a action.Action) (Action, error) {
	switch v := a.(type) {
	case action.CreateAccount:
		return Action{Enum: enumCreateAccount}, nil

	case action.DeployContract:
		return Action{
			Enum:           enumDeployContract,
			DeployContract: DeployContract{Code: v.Code},
		}, nil

	case action.FunctionCall:
		gas, err := strconv.ParseUint(v.Gas, 10, 64)
		if err != nil {
			return Action{}, nlerr.WithDetails(nlerr.ErrInvalidAction, map[string]string{
				"gas": v.Gas,
			})
		}
		deposit, err := parseU128(v.Deposit)
		if err != nil {
			return Action{}, err
		}
		return Action{
			Enum: enumFunctionCall,
			FunctionCall: FunctionCall{
				MethodName: v.MethodName,
				Args:       v.Args,
				Gas:        gas,
				Deposit:    *deposit,
			},
		}, nil

	case action.Transfer:
		deposit, err := parseU128(v.Deposit)
		if err != nil {
			return Action{}, err
		}
		return Action{
			Enum:     enumTransfer,
			Transfer: Transfer{Deposit: *deposit},
		}, nil

	case action.Stake:
		stake, err := parseU128(v.Stake)
		if err != nil {
			return Action{}, err
		}
		pk, err := newPublicKey(v.PublicKey)
		if err != nil {
			return Action{}, err
		}
		return Action{
			Enum:  enumStake,
			Stake: Stake{Stake: *stake, PublicKey: pk},
		}, nil

	case action.AddKey:
		pk, err := newPublicKey(v.PublicKey)
		if err != nil {
			return Action{}, err
		}
		ak, err := newAccessKey(v.Permission)
		if err != nil {
			return Action{}, err
		}
		return Action{
			Enum:   enumAddKey,
			AddKey: AddKey{PublicKey: pk, AccessKey: ak},
		}, nil

	case action.DeleteKey:
		pk, err := newPublicKey(v.PublicKey)
		if err != nil {
			return Action{}, err
		}
		return Action{
			Enum:      enumDeleteKey,
			DeleteKey: DeleteKey{PublicKey: pk},
		}, nil

	case action.DeleteAccount:
		return Action{
			Enum:          enumDeleteAccount,
			DeleteAccount: DeleteAccount{BeneficiaryID: v.BeneficiaryID},
		}, nil

	default:
		return Action{}, nlerr.WithDetails(nlerr.ErrInvalidAction, map[string]string{
			"kind": a.Kind().String(),
		})
	}
}

// newAccessKey builds the wire access key for an AddKey permission.
func newAccessKey(p action.AccessKeyPermission) (AccessKey, error) {
	if p.Scope == nil {
		return AccessKey{
			Permission: AccessKeyPermission{Enum: enumPermissionFullAccess},
		}, nil
	}

	var allowance *big.Int
	if p.Scope.Allowance != "" {
		v, err := parseU128(p.Scope.Allowance)
		if err != nil {
			return AccessKey{}, err
		}
		allowance = v
	}

	return AccessKey{
		Permission: AccessKeyPermission{
			Enum: enumPermissionFunctionCall,
			FunctionCall: FunctionCallPermission{
				Allowance:   allowance,
				ReceiverID:  p.Scope.ReceiverID,
				MethodNames: p.Scope.MethodNames,
			},
		},
	}, nil
}

// parseU128 parses a decimal integer string into a big.Int bounded to 128
// bits.
func parseU128(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 || n.BitLen() > 128 {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidAmount, map[string]string{
			"value": s,
		})
	}
	return n, nil
}
