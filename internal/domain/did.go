package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DID represents a Decentralized Identifier (W3C standard)
type DID string

// NewDID creates a did:pkh identifier for an address on a chain
// Reference: https://github.com/w3c-ccg/did-pkh
func NewDID(address string, chain Chain) DID {
	return DID(fmt.Sprintf("did:pkh:%s:%s", strings.ToLower(string(chain)), strings.ToLower(address)))
}

// String returns the string representation of the DID
func (d DID) String() string {
	return string(d)
}

// Address returns the account address component of a did:pkh identifier,
// or an empty string if the DID does not carry one
func (d DID) Address() string {
	parts := strings.Split(string(d), ":")
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-1]
}

// Valid checks the identifier is a well-formed DID. For did:pkh on EVM
// chains the account component must be a hex address.
func (d DID) Valid() bool {
	parts := strings.Split(string(d), ":")
	if len(parts) < 3 || parts[0] != "did" {
		return false
	}
	for _, p := range parts[1:] {
		if p == "" {
			return false
		}
	}
	if parts[1] == "pkh" && len(parts) >= 4 && parts[2] == "eip155" {
		return common.IsHexAddress(parts[len(parts)-1])
	}
	return true
}
