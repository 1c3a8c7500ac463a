package oilconfig

// GDPRApplies reports whether consent gating must be enforced for this session.
//
// The first read settles the value from the record: an explicit gdpr_applies wins,
// otherwise it is true unless gdpr_applies_globally is false. Later edits to the
// record do not change it; only SetGDPRApplies or Reset do.
func (r *Resolver) GDPRApplies() bool {
	return withLock(r, (*Resolver).gdprAppliesLocked)
}

func (r *Resolver) gdprAppliesLocked() bool {
	if r.gdprApplies == nil {
		v := applicabilityFromRecord(r.raw)
		r.gdprApplies = &v
	}
	return *r.gdprApplies
}

// SetGDPRApplies overrides applicability, e.g. after geolocation places the visitor
// outside the EU. The value stays authoritative until Reset.
func (r *Resolver) SetGDPRApplies(applies bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gdprApplies = &applies
}

func applicabilityFromRecord(raw RawConfig) bool {
	if v, ok := raw[KeyGDPRApplies].(bool); ok {
		return v
	}
	if v, ok := raw[KeyGDPRAppliesGlobally].(bool); ok && !v {
		return false
	}
	return true
}
