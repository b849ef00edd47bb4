package service

// PracticeScope is the practice visibility granted to a user: everything,
// one named practice, or nothing at all.
type PracticeScope struct {
	Restricted   bool
	Denied       bool
	PracticeName string
}

func ScopeUnrestricted() PracticeScope {
	return PracticeScope{}
}

func ScopeRestrictedTo(practiceName string) PracticeScope {
	return PracticeScope{Restricted: true, PracticeName: practiceName}
}

func ScopeDenied() PracticeScope {
	return PracticeScope{Denied: true}
}

// AccessPolicy maps an authenticated user onto a PracticeScope from an
// injected username -> practice table (nil value = explicitly unrestricted).
//
// Admins are always unrestricted. For non-admins absent from the table the
// legacy behavior is unrestricted too — any unlisted username bypasses the
// practice restriction. Set defaultDeny to close that gap: unlisted
// non-admins then see an empty listing.
type AccessPolicy struct {
	userPractices map[string]*string
	defaultDeny   bool
}

func NewAccessPolicy(userPractices map[string]*string, defaultDeny bool) *AccessPolicy {
	if userPractices == nil {
		userPractices = map[string]*string{}
	}
	return &AccessPolicy{
		userPractices: userPractices,
		defaultDeny:   defaultDeny,
	}
}

func (p *AccessPolicy) ScopeFor(username string, isAdmin bool) PracticeScope {
	if isAdmin {
		return ScopeUnrestricted()
	}
	practice, ok := p.userPractices[username]
	if !ok {
		if p.defaultDeny {
			return ScopeDenied()
		}
		return ScopeUnrestricted()
	}
	if practice == nil || *practice == "" {
		return ScopeUnrestricted()
	}
	return ScopeRestrictedTo(*practice)
}
