package app

import "errors"

var ErrNotOwner = errors.New("not authorized to access this resource")

// authorizeOwner is the single ownership predicate. Every read and write
// against an upload or analysis goes through it, keeping the policy in one
// place instead of buried in storage queries.
func authorizeOwner(ownerID, requesterID uint) error {
	if ownerID != requesterID {
		return ErrNotOwner
	}
	return nil
}
