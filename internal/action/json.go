package action

import (
	"encoding/json"
	"fmt"
)

// List is a slice of actions with stable JSON round-tripping. Each element
// serializes as {"type": ..., "params": ...}, which is also the shape the
// wallet bridge receives.
type List []Action

// envelope is the tagged JSON form of one action.
type envelope struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

// MarshalJSON implements json.Marshaler.
func (l List) MarshalJSON() ([]byte, error) {
	out := make([]envelope, 0, len(l))
	for _, a := range l {
		params, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		out = append(out, envelope{Type: a.Kind().String(), Params: params})
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *List) UnmarshalJSON(data []byte) error {
	var raw []envelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(List, 0, len(raw))
	for _, e := range raw {
		a, err := decode(e)
		if err != nil {
			return err
		}
		out = append(out, a)
	}
	*l = out
	return nil
}

// decode builds the concrete variant for one envelope.
func decode(e envelope) (Action, error) {
	var (
		a   Action
		err error
	)

	switch e.Type {
	case KindCreateAccount.String():
		var v CreateAccount
		err = json.Unmarshal(e.Params, &v)
		a = v
	case KindDeployContract.String():
		var v DeployContract
		err = json.Unmarshal(e.Params, &v)
		a = v
	case KindFunctionCall.String():
		var v FunctionCall
		err = json.Unmarshal(e.Params, &v)
		a = v
	case KindTransfer.String():
		var v Transfer
		err = json.Unmarshal(e.Params, &v)
		a = v
	case KindStake.String():
		var v Stake
		err = json.Unmarshal(e.Params, &v)
		a = v
	case KindAddKey.String():
		var v AddKey
		err = json.Unmarshal(e.Params, &v)
		a = v
	case KindDeleteKey.String():
		var v DeleteKey
		err = json.Unmarshal(e.Params, &v)
		a = v
	case KindDeleteAccount.String():
		var v DeleteAccount
		err = json.Unmarshal(e.Params, &v)
		a = v
	default:
		return nil, fmt.Errorf("unknown action type %q", e.Type)
	}

	if err != nil {
		return nil, err
	}
	return a, nil
}
