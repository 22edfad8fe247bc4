package domain

const (
	// Protocol constants
	PROTOCOL_NAME        = "x402"
	DEFAULT_ASSET_SYMBOL = "QCT"

	// x402 challenge headers attached to every issued quote
	HEADER_PROTOCOL   = "X-402-Protocol"
	HEADER_REQUEST_ID = "X-402-Request-ID"
	HEADER_ASSET      = "X-402-Asset"
	HEADER_AMOUNT     = "X-402-Amount"
	HEADER_CHAIN      = "X-402-Chain"
	HEADER_TO_CHAIN   = "X-402-To-Chain"
	HEADER_RECIPIENT  = "X-402-Recipient"
	HEADER_CALLBACK   = "X-402-Callback"

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
)
