package core

import "context"

// PartRecord is one row of the parts table, keyed by PartNumber.
type PartRecord struct {
	PartNumber        string `json:"partNumber"`
	DeviceType        string `json:"deviceType"`
	DeviceName        string `json:"deviceName"`
	Value             string `json:"value"`
	PositiveTolerance string `json:"positiveTolerance"`
	NegativeTolerance string `json:"negativeTolerance"`
	CaseName          string `json:"caseName"`
	CaseIdentifier    string `json:"caseIdentifier"`
}

// Changed reports whether any non-key attribute differs between a and b.
// Comparing records with different part numbers returns a *KeyMismatchError.
func Changed(a, b PartRecord) (bool, error) {
	if a.PartNumber != b.PartNumber {
		return false, &KeyMismatchError{Left: a.PartNumber, Right: b.PartNumber}
	}

	return a.DeviceType != b.DeviceType ||
		a.DeviceName != b.DeviceName ||
		a.Value != b.Value ||
		a.PositiveTolerance != b.PositiveTolerance ||
		a.NegativeTolerance != b.NegativeTolerance ||
		a.CaseName != b.CaseName ||
		a.CaseIdentifier != b.CaseIdentifier, nil
}

// Copy returns an independent clone of p.
func (p PartRecord) Copy() PartRecord {
	// All fields are strings, so the value copy shares no mutable state.
	return p
}

// CopyParts clones every record into a new slice.
func CopyParts(parts []PartRecord) []PartRecord {
	out := make([]PartRecord, len(parts))
	for i, p := range parts {
		out[i] = p.Copy()
	}
	return out
}

// ResultSet holds a query result twice: Original is the snapshot taken at
// query time, Working is the copy the user edits. Both always list the same
// part numbers in the same order.
type ResultSet struct {
	Original []PartRecord
	Working  []PartRecord
}

// NewResultSet snapshots parts into a fresh ResultSet.
func NewResultSet(parts []PartRecord) *ResultSet {
	return &ResultSet{
		Original: CopyParts(parts),
		Working:  CopyParts(parts),
	}
}

// Edit applies fn to the working record with the given part number.
// Returns a *LookupError if no such record exists.
func (rs *ResultSet) Edit(partNumber string, fn func(*PartRecord)) error {
	for i := range rs.Working {
		if rs.Working[i].PartNumber == partNumber {
			pn := rs.Working[i].PartNumber
			fn(&rs.Working[i])
			// The key is identity, edits never move a record.
			rs.Working[i].PartNumber = pn
			return nil
		}
	}
	return &LookupError{PartNumber: partNumber}
}

// Save writes changed working records back through store. Original is
// replaced with a snapshot of Working only when the write succeeds.
func (rs *ResultSet) Save(ctx context.Context, store *PartStore) (int, error) {
	updated, err := store.ApplyUpdates(ctx, rs.Original, rs.Working)
	if err != nil {
		return 0, err
	}
	rs.Original = CopyParts(rs.Working)
	return updated, nil
}
