package redis

import "strconv"

// Redis key naming conventions for relay data.
// All keys are prefixed with "turniti:" to avoid collisions.

const keyPrefix = "turniti:"

// ── User keys ──

// userKey returns the Hash key for a user: turniti:user:{id}
func userKey(userID int64) string {
	return keyPrefix + "user:" + strconv.FormatInt(userID, 10)
}

// userIDsKey is the Set tracking all user IDs for enumeration.
const userIDsKey = keyPrefix + "user_ids"

// ── Outcome keys ──

// outcomesKey is the List of all outcome records, newest first.
const outcomesKey = keyPrefix + "outcomes"

// userOutcomesKey returns the per-user outcome List: turniti:outcomes:user:{id}
func userOutcomesKey(userID int64) string {
	return keyPrefix + "outcomes:user:" + strconv.FormatInt(userID, 10)
}

// ── Transaction keys ──

// txnKey returns the key for a transaction record: turniti:txn:{id}
func txnKey(id string) string { return keyPrefix + "txn:" + id }

// userTxnsKey returns the per-user transaction id List, newest first.
func userTxnsKey(userID int64) string {
	return keyPrefix + "txns:user:" + strconv.FormatInt(userID, 10)
}
