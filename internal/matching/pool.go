package matching

import "carrier-matching/internal/models"

// FmcsaRequirement is how strictly the pool filters on FMCSA authorization.
type FmcsaRequirement int

const (
	// FmcsaAny applies no authorization clause.
	FmcsaAny FmcsaRequirement = iota
	// FmcsaNotRevoked excludes carriers explicitly marked unauthorized; unknown passes.
	FmcsaNotRevoked
	// FmcsaAuthorizedOnly requires an explicit authorization.
	FmcsaAuthorizedOnly
)

func (r FmcsaRequirement) String() string {
	switch r {
	case FmcsaNotRevoked:
		return "not_revoked"
	case FmcsaAuthorizedOnly:
		return "authorized_only"
	default:
		return "any"
	}
}

// CarrierFilter is the hard predicate for the base carrier pool. Active,
// not blocked and not disqualified are always required.
type CarrierFilter struct {
	ComplianceStatus string
	Fmcsa            FmcsaRequirement
}

// BuildCarrierFilter derives the pool predicate from the effective options.
// onlyAuthorizedCarriers supersedes includeFmcsaHealth.
func BuildCarrierFilter(opts EffectiveOptions) CarrierFilter {
	f := CarrierFilter{ComplianceStatus: models.ComplianceStatusPass}
	switch {
	case opts.OnlyAuthorizedCarriers:
		f.Fmcsa = FmcsaAuthorizedOnly
	case opts.IncludeFmcsaHealth:
		f.Fmcsa = FmcsaNotRevoked
	default:
		f.Fmcsa = FmcsaAny
	}
	return f
}

// Matches evaluates the filter in memory. SQL-backed stores render the same
// predicate into their WHERE clause instead.
func (f CarrierFilter) Matches(c models.Carrier) bool {
	if !c.Active || c.Blocked || c.IsDisqualified() {
		return false
	}
	if c.ComplianceStatus != f.ComplianceStatus {
		return false
	}
	switch f.Fmcsa {
	case FmcsaAuthorizedOnly:
		return c.FmcsaAuthorized != nil && *c.FmcsaAuthorized
	case FmcsaNotRevoked:
		return c.FmcsaAuthorized == nil || *c.FmcsaAuthorized
	}
	return true
}
