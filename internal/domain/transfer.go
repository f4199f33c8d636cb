package domain

import "github.com/holiman/uint256"

// Transferor is the custody capability the engine consumes. Both legs are
// all-or-nothing: a returned error means no balance moved. Implementations
// must not re-enter the engine; nested mutating calls are rejected.
type Transferor interface {
	// TransferIn moves amount of token from the holder into engine custody.
	TransferIn(token, from Address, amount *uint256.Int) error

	// TransferOut moves amount of token from engine custody to the recipient.
	TransferOut(token, to Address, amount *uint256.Int) error
}
