package service

import "errors"

// Purchase failures are expected business outcomes, returned as
// sentinels so the request layer can tell "top up more coins" apart
// from "you already own this" from "come back when the novel is done".
var (
	ErrInsufficientFunds = errors.New("insufficient coin balance")
	ErrAlreadyOwned      = errors.New("already owned")
	ErrNotPurchasable    = errors.New("not purchasable")
	ErrConflict          = errors.New("illegal ledger transition")
	ErrUnknownPlan       = errors.New("unknown coin plan")
	ErrUpstream          = errors.New("payment provider unavailable")
)
