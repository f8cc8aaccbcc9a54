package rpki

import "github.com/dd0wney/bgpsim/pkg/asgraph"

// ASPARegistry maps a customer ASN to the set of providers it has
// authorized to propagate its routes. An AS without a record makes every
// hop through it "unknown" rather than invalid, per the ASPA draft.
type ASPARegistry struct {
	providers map[asgraph.ASN]map[asgraph.ASN]bool
}

// NewASPARegistry creates an empty registry.
func NewASPARegistry() *ASPARegistry {
	return &ASPARegistry{providers: make(map[asgraph.ASN]map[asgraph.ASN]bool)}
}

// Reset drops all attestations so the registry can serve the next trial.
func (r *ASPARegistry) Reset() {
	clear(r.providers)
}

// Authorize records that customer has attested provider as an authorized
// upstream.
func (r *ASPARegistry) Authorize(customer asgraph.ASN, providers ...asgraph.ASN) {
	set, ok := r.providers[customer]
	if !ok {
		set = make(map[asgraph.ASN]bool)
		r.providers[customer] = set
	}
	for _, p := range providers {
		set[p] = true
	}
}

// HasAttestation reports whether the customer has published an ASPA record.
func (r *ASPARegistry) HasAttestation(customer asgraph.ASN) bool {
	return len(r.providers[customer]) > 0
}

// HopAuthorized reports whether the hop from customer up to provider is
// consistent with the registry: true when the customer has no record
// (unknown) or when the provider is attested.
func (r *ASPARegistry) HopAuthorized(customer, provider asgraph.ASN) bool {
	set, ok := r.providers[customer]
	if !ok {
		return true
	}
	return set[provider]
}

// PathEndRegistry maps an origin ASN to the set of neighbors attested to
// appear directly adjacent to it in an AS path (the "last mile" of the
// path-end validation scheme).
type PathEndRegistry struct {
	neighbors map[asgraph.ASN]map[asgraph.ASN]bool
}

// NewPathEndRegistry creates an empty registry.
func NewPathEndRegistry() *PathEndRegistry {
	return &PathEndRegistry{neighbors: make(map[asgraph.ASN]map[asgraph.ASN]bool)}
}

// Reset drops all records so the registry can serve the next trial.
func (r *PathEndRegistry) Reset() {
	clear(r.neighbors)
}

// Attest records that neighbor is a legitimate first hop away from origin.
func (r *PathEndRegistry) Attest(origin asgraph.ASN, neighbors ...asgraph.ASN) {
	set, ok := r.neighbors[origin]
	if !ok {
		set = make(map[asgraph.ASN]bool)
		r.neighbors[origin] = set
	}
	for _, n := range neighbors {
		set[n] = true
	}
}

// HasRecord reports whether the origin has published a path-end record.
// Routes from origins without a record cannot be checked and pass.
func (r *PathEndRegistry) HasRecord(origin asgraph.ASN) bool {
	return len(r.neighbors[origin]) > 0
}

// Attested reports whether neighbor may sit directly adjacent to origin.
func (r *PathEndRegistry) Attested(origin, neighbor asgraph.ASN) bool {
	return r.neighbors[origin][neighbor]
}
