// Package action defines the closed set of operations a transaction can
// carry. Actions are built through validating constructors and are not
// mutated after construction.
package action

import (
	"encoding/base64"
	"encoding/json"
	"math/big"

	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// Kind identifies an action variant.
type Kind int

// Action variants.
const (
	KindCreateAccount Kind = iota
	KindDeployContract
	KindFunctionCall
	KindTransfer
	KindStake
	KindAddKey
	KindDeleteKey
	KindDeleteAccount
)

// String returns the wire-facing name of the variant.
func (k Kind) String() string {
	switch k {
	case KindCreateAccount:
		return "CreateAccount"
	case KindDeployContract:
		return "DeployContract"
	case KindFunctionCall:
		return "FunctionCall"
	case KindTransfer:
		return "Transfer"
	case KindStake:
		return "Stake"
	case KindAddKey:
		return "AddKey"
	case KindDeleteKey:
		return "DeleteKey"
	case KindDeleteAccount:
		return "DeleteAccount"
	default:
		return "Unknown"
	}
}

// Action is the closed sum type. Only the variant structs in this package
// implement it.
type Action interface {
	Kind() Kind
}

// FunctionCall invokes a contract method with attached gas and deposit.
// Gas and Deposit are integer strings in base denominations.
type FunctionCall struct {
	MethodName string `json:"method_name"`
	Args       []byte `json:"args,omitempty"` // JSON-encoded call arguments
	Gas        string `json:"gas"`
	Deposit    string `json:"deposit"`
}

// Kind implements Action.
func (FunctionCall) Kind() Kind { return KindFunctionCall }

// Transfer moves Deposit yoctoNEAR to the receiver.
type Transfer struct {
	Deposit string `json:"deposit"`
}

// Kind implements Action.
func (Transfer) Kind() Kind { return KindTransfer }

// Stake delegates Stake yoctoNEAR to a validator key.
type Stake struct {
	Stake     string `json:"stake"`
	PublicKey string `json:"public_key"`
}

// Kind implements Action.
func (Stake) Kind() Kind { return KindStake }

// AccessKeyPermission describes what an added key may do. A nil Scope means
// full access.
type AccessKeyPermission struct {
	Scope *FunctionCallScope `json:"scope,omitempty"`
}

// FunctionCallScope restricts a key to calling specific methods on one
// receiver with zero attached deposit.
type FunctionCallScope struct {
	Allowance   string   `json:"allowance,omitempty"` // Optional yoctoNEAR spending allowance
	ReceiverID  string   `json:"receiver_id"`
	MethodNames []string `json:"method_names"`
}

// AddKey attaches a new access key to the signer's account.
type AddKey struct {
	PublicKey  string              `json:"public_key"`
	Permission AccessKeyPermission `json:"access_key"`
}

// Kind implements Action.
func (AddKey) Kind() Kind { return KindAddKey }

// DeleteKey removes an access key from the signer's account.
type DeleteKey struct {
	PublicKey string `json:"public_key"`
}

// Kind implements Action.
func (DeleteKey) Kind() Kind { return KindDeleteKey }

// DeleteAccount deletes the signer's account, sending remaining funds to
// the beneficiary.
type DeleteAccount struct {
	BeneficiaryID string `json:"beneficiary_id"`
}

// Kind implements Action.
func (DeleteAccount) Kind() Kind { return KindDeleteAccount }

// CreateAccount creates the receiver account. It carries no fields.
type CreateAccount struct{}

// Kind implements Action.
func (CreateAccount) Kind() Kind { return KindCreateAccount }

// DeployContract deploys Code as the receiver's contract.
type DeployContract struct {
	Code []byte `json:"code"`
}

// Kind implements Action.
func (DeployContract) Kind() Kind { return KindDeployContract }

// DefaultGas is the gas attached to a function call when none is given
// (30 Tgas).
const DefaultGas = "30000000000000"

// NewFunctionCall builds a FunctionCall action. Args are JSON-encoded;
// argsBase64, when non-empty, is used verbatim instead. Gas defaults to
// 30 Tgas and deposit to zero.
func NewFunctionCall(methodName string, args any, argsBase64, gas, deposit string) (Action, error) {
	if methodName == "" {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidAction, map[string]string{
			"reason": "method name is required",
		})
	}

	var encoded []byte
	switch {
	case argsBase64 != "":
		var err error
		encoded, err = base64.StdEncoding.DecodeString(argsBase64)
		if err != nil {
			return nil, nlerr.Wrap(nlerr.ErrInvalidAction, "decoding args")
		}
	case args != nil:
		var err error
		encoded, err = json.Marshal(args)
		if err != nil {
			return nil, nlerr.Wrap(err, "encoding args")
		}
	}

	if gas == "" {
		gas = DefaultGas
	}
	if deposit == "" {
		deposit = "0"
	}
	if !isUint(gas) || !isUint(deposit) {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidAction, map[string]string{
			"gas":     gas,
			"deposit": deposit,
		})
	}

	return FunctionCall{
		MethodName: methodName,
		Args:       encoded,
		Gas:        gas,
		Deposit:    deposit,
	}, nil
}

// NewTransfer builds a Transfer of deposit yoctoNEAR.
func NewTransfer(deposit string) (Action, error) {
	if !isUint(deposit) {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidAction, map[string]string{
			"deposit": deposit,
		})
	}
	return Transfer{Deposit: deposit}, nil
}

// NewStake builds a Stake action.
func NewStake(amount, publicKey string) (Action, error) {
	if !isUint(amount) || publicKey == "" {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidAction, map[string]string{
			"stake":      amount,
			"public_key": publicKey,
		})
	}
	return Stake{Stake: amount, PublicKey: publicKey}, nil
}

// NewUnstake builds a Stake action for zero, withdrawing the full stake.
func NewUnstake(publicKey string) (Action, error) {
	return NewStake("0", publicKey)
}

// NewAddFullAccessKey builds an AddKey action with full-access permission.
func NewAddFullAccessKey(publicKey string) (Action, error) {
	if publicKey == "" {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidAction, map[string]string{
			"reason": "public key is required",
		})
	}
	return AddKey{PublicKey: publicKey}, nil
}

// NewAddLimitedAccessKey builds an AddKey action scoped to methodNames on
// receiverID. allowance may be "" for no spending allowance.
func NewAddLimitedAccessKey(publicKey, allowance, receiverID string, methodNames []string) (Action, error) {
	if publicKey == "" || receiverID == "" {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidAction, map[string]string{
			"reason": "public key and receiver are required",
		})
	}
	if allowance != "" && !isUint(allowance) {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidAction, map[string]string{
			"allowance": allowance,
		})
	}
	return AddKey{
		PublicKey: publicKey,
		Permission: AccessKeyPermission{
			Scope: &FunctionCallScope{
				Allowance:   allowance,
				ReceiverID:  receiverID,
				MethodNames: methodNames,
			},
		},
	}, nil
}

// NewDeleteKey builds a DeleteKey action.
func NewDeleteKey(publicKey string) (Action, error) {
	if publicKey == "" {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidAction, map[string]string{
			"reason": "public key is required",
		})
	}
	return DeleteKey{PublicKey: publicKey}, nil
}

// NewDeleteAccount builds a DeleteAccount action.
func NewDeleteAccount(beneficiaryID string) (Action, error) {
	if beneficiaryID == "" {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidAction, map[string]string{
			"reason": "beneficiary is required",
		})
	}
	return DeleteAccount{BeneficiaryID: beneficiaryID}, nil
}

// NewCreateAccount builds a CreateAccount action.
func NewCreateAccount() Action {
	return CreateAccount{}
}

// NewDeployContract builds a DeployContract action.
func NewDeployContract(code []byte) (Action, error) {
	if len(code) == 0 {
		return nil, nlerr.WithDetails(nlerr.ErrInvalidAction, map[string]string{
			"reason": "contract code is empty",
		})
	}
	return DeployContract{Code: code}, nil
}

// NewTransferFT builds the standard ft_transfer function call with the
// mandatory 1 yoctoNEAR deposit.
func NewTransferFT(receiverID, ftAmount, memo string) (Action, error) {
	args := map[string]any{
		"receiver_id": receiverID,
		"amount":      ftAmount,
	}
	if memo != "" {
		args["memo"] = memo
	}
	return NewFunctionCall("ft_transfer", args, "", "", "1")
}

// isUint reports whether s is a non-negative decimal integer. Amounts exceed
// uint64 so validation goes through big.Int.
func isUint(s string) bool {
	if s == "" {
		return false
	}
	n, ok := new(big.Int).SetString(s, 10)
	return ok && n.Sign() >= 0
}
