// Package access decides who may do what with a stored account.
//
// The model has two tiers: the owner, who created the account, and viewers
// the owner shared it with. Both tiers may read codes, reveal the secret and
// edit their own remark. Only the owner may change the account's name, issuer
// or secret, delete it, or change who it is shared with. Administrators get
// no implicit access to accounts they do not own.
package access
